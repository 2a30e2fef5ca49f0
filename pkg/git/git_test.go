package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("Init", func() {
	var (
		logger *zap.Logger
		dir    string
	)

	BeforeEach(func() {
		logger = zap.NewNop()
		dir = GinkgoT().TempDir()
	})

	It("should create a repository with one commit", func() {
		result, err := Init(logger, dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Path).To(Equal(dir))
		Expect(result.CommitSHA).To(HaveLen(40))
		Expect(filepath.Join(dir, ".git")).To(BeADirectory())

		repo, err := git.PlainOpen(dir)
		Expect(err).NotTo(HaveOccurred())
		head, err := repo.Head()
		Expect(err).NotTo(HaveOccurred())
		Expect(head.Hash().String()).To(Equal(result.CommitSHA))
	})

	It("should refuse to initialise an existing repository", func() {
		_, err := Init(logger, dir)
		Expect(err).NotTo(HaveOccurred())

		_, err = Init(logger, dir)
		Expect(err).To(MatchError(ContainSubstring("git init failed")))
	})
})

var _ = Describe("Clone", func() {
	var (
		ctx    context.Context
		logger *zap.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = zap.NewNop()
	})

	It("should require a URL", func() {
		_, err := Clone(ctx, logger, &CloneConfig{Destination: GinkgoT().TempDir()})

		Expect(err).To(MatchError(ContainSubstring("URL is required")))
	})

	It("should fail when the auth path cannot be read", func() {
		dest := GinkgoT().TempDir()

		_, err := Clone(ctx, logger, &CloneConfig{
			URL:         "https://example.com/repo.git",
			AuthPath:    filepath.Join(dest, "no-creds"),
			Destination: filepath.Join(dest, "out"),
		})

		Expect(err).To(MatchError(ContainSubstring("loading auth")))
		Expect(filepath.Join(dest, "out")).NotTo(BeAnExistingFile())
	})

	It("should clone a local repository and report its head", func() {
		if _, err := exec.LookPath("git"); err != nil {
			Skip("git not available for the file transport")
		}
		source := GinkgoT().TempDir()
		initResult, err := Init(logger, source)
		Expect(err).NotTo(HaveOccurred())

		dest := filepath.Join(GinkgoT().TempDir(), "checkout")
		result, err := Clone(ctx, logger, &CloneConfig{URL: source, Destination: dest})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.CommitSHA).To(Equal(initResult.CommitSHA))
		Expect(result.Path).To(Equal(dest))
	})

	It("should fail for a missing source", func() {
		dest := GinkgoT().TempDir()

		_, err := Clone(ctx, logger, &CloneConfig{
			URL:         filepath.Join(dest, "does-not-exist"),
			Destination: filepath.Join(dest, "out"),
		})

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("loadAuthFromPath", func() {
	It("should read trimmed credentials", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "username"), []byte("bot\n"), 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "password"), []byte(" s3cret \n"), 0o600)).To(Succeed())

		auth, err := loadAuthFromPath(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(auth.String()).To(ContainSubstring("bot"))
	})

	It("should fail without a username file", func() {
		_, err := loadAuthFromPath(GinkgoT().TempDir())

		Expect(err).To(MatchError(ContainSubstring("username")))
	})
})
