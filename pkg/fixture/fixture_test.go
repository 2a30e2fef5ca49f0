package fixture

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"

	"github.com/justatest/cmdcheck/pkg/git"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("Registry", func() {
	var (
		ctx      context.Context
		registry *Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		registry = NewRegistry(zap.NewNop())
	})

	It("should list the built-in fixtures", func() {
		Expect(registry.Names()).To(Equal([]string{Empty, GitRepo, TempDir}))
	})

	Context("when resolving the empty fixture", func() {
		It("should equal a freshly constructed empty mapping", func() {
			value, err := registry.Resolve(ctx, Empty)

			Expect(err).NotTo(HaveOccurred())
			Expect(value.Data).To(Equal(map[string]any{}))
			Expect(value.Close()).To(Succeed())
		})
	})

	Context("when resolving the tmpdir fixture", func() {
		It("should hand out a fresh directory and remove it on close", func() {
			first, err := registry.Resolve(ctx, TempDir)
			Expect(err).NotTo(HaveOccurred())
			second, err := registry.Resolve(ctx, TempDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Dir).To(BeADirectory())
			Expect(first.Dir).NotTo(Equal(second.Dir))

			Expect(first.Close()).To(Succeed())
			Expect(second.Close()).To(Succeed())
			Expect(first.Dir).NotTo(BeAnExistingFile())
		})

		It("should tolerate closing twice", func() {
			value, err := registry.Resolve(ctx, TempDir)
			Expect(err).NotTo(HaveOccurred())

			Expect(value.Close()).To(Succeed())
			Expect(value.Close()).To(Succeed())
		})
	})

	Context("when resolving the gitrepo fixture", func() {
		It("should provide an initialised repository", func() {
			value, err := registry.Resolve(ctx, GitRepo)
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = value.Close() }()

			Expect(filepath.Join(value.Dir, ".git")).To(BeADirectory())
			Expect(value.Data).To(HaveKeyWithValue("commit", HaveLen(40)))
		})
	})

	Context("when the fixture is unknown", func() {
		It("should report ErrUnknownFixture", func() {
			value, err := registry.Resolve(ctx, "nope")

			Expect(value).To(BeNil())
			Expect(err).To(MatchError(ErrUnknownFixture))
			Expect(err.Error()).To(ContainSubstring(`"nope"`))
		})
	})

	Context("with a custom fixture", func() {
		It("should pass the setup value through", func() {
			registry.Register("answer", func(context.Context) (*Value, error) {
				return &Value{Data: map[string]any{"answer": 42}}, nil
			})

			value, err := registry.Resolve(ctx, "answer")

			Expect(err).NotTo(HaveOccurred())
			Expect(value.Data["answer"]).To(Equal(42))
		})

		It("should wrap setup errors with the fixture name", func() {
			errBroken := errors.New("broken setup")
			registry.Register("broken", func(context.Context) (*Value, error) {
				return nil, errBroken
			})

			_, err := registry.Resolve(ctx, "broken")

			Expect(err).To(MatchError(errBroken))
			Expect(err.Error()).To(HavePrefix("fixture broken"))
		})

		It("should substitute an empty value for nil", func() {
			registry.Register("nothing", func(context.Context) (*Value, error) { return nil, nil })

			value, err := registry.Resolve(ctx, "nothing")

			Expect(err).NotTo(HaveOccurred())
			Expect(value).NotTo(BeNil())
			Expect(value.Close()).To(Succeed())
		})
	})
})

var _ = Describe("CloneInto", func() {
	It("should check out a local repository", func() {
		if _, err := exec.LookPath("git"); err != nil {
			Skip("git not available for the file transport")
		}
		ctx := context.Background()
		registry := NewRegistry(zap.NewNop())
		source, err := registry.Resolve(ctx, GitRepo)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = source.Close() }()

		registry.Register("checkout", CloneInto(zap.NewNop(), &git.CloneConfig{URL: source.Dir}))
		value, err := registry.Resolve(ctx, "checkout")
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = value.Close() }()

		Expect(value.Data["commit"]).To(Equal(source.Data["commit"]))
		Expect(filepath.Base(value.Dir)).To(Equal("source"))
	})

	It("should pass the auth path through to the clone", func() {
		fn := CloneInto(zap.NewNop(), &git.CloneConfig{
			URL:      "https://example.com/repo.git",
			Depth:    1,
			AuthPath: filepath.Join(GinkgoT().TempDir(), "no-creds"),
		})

		value, err := fn(context.Background())

		Expect(err).To(MatchError(ContainSubstring("loading auth")))
		Expect(value).To(BeNil())
	})

	It("should clean up after a failed clone", func() {
		fn := CloneInto(zap.NewNop(), &git.CloneConfig{URL: filepath.Join(GinkgoT().TempDir(), "missing")})

		value, err := fn(context.Background())

		Expect(err).To(HaveOccurred())
		Expect(value).To(BeNil())
	})
})
