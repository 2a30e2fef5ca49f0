package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/justatest/cmdcheck/pkg/check"
	"github.com/justatest/cmdcheck/pkg/git"
	"gopkg.in/yaml.v3"
)

// Suite is a named, ordered list of checks
type Suite struct {
	Name     string        `yaml:"name"`
	Fixtures []FixtureSpec `yaml:"fixtures,omitempty"`
	Checks   []check.Check `yaml:"checks"`
}

// FixtureSpec declares a suite-local fixture that checks can refer to by name
type FixtureSpec struct {
	Name  string     `yaml:"name"`
	Clone *CloneSpec `yaml:"clone"`
}

// CloneSpec describes a repository to check out for each check using it
type CloneSpec struct {
	URL      string `yaml:"url"`
	Revision string `yaml:"revision,omitempty"`
	Depth    int    `yaml:"depth,omitempty"`
	AuthPath string `yaml:"auth_path,omitempty"`
}

// CloneConfig converts the spec into a clone configuration
func (c *CloneSpec) CloneConfig() *git.CloneConfig {
	return &git.CloneConfig{
		URL:      c.URL,
		Revision: c.Revision,
		Depth:    c.Depth,
		AuthPath: c.AuthPath,
	}
}

// LoadSuite reads a suite from a YAML file. Relative check directories and
// auth paths are resolved against the directory holding the file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}
	s, err := ParseSuite(data)
	if err != nil {
		return nil, fmt.Errorf("parsing suite %s: %w", path, err)
	}
	s.resolvePaths(filepath.Dir(path))
	return s, nil
}

func (s *Suite) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range s.Checks {
		s.Checks[i].Dir = resolve(s.Checks[i].Dir)
	}
	for i := range s.Fixtures {
		if s.Fixtures[i].Clone != nil {
			s.Fixtures[i].Clone.AuthPath = resolve(s.Fixtures[i].Clone.AuthPath)
		}
	}
}

// ParseSuite decodes and validates a suite. Unknown keys are rejected.
func ParseSuite(data []byte) (*Suite, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every check is runnable and names are unique
func (s *Suite) Validate() error {
	if len(s.Checks) == 0 {
		return fmt.Errorf("suite %q has no checks", s.Name)
	}
	fixtures := make(map[string]bool, len(s.Fixtures))
	for i := range s.Fixtures {
		f := &s.Fixtures[i]
		if f.Name == "" {
			return fmt.Errorf("fixture %d has no name", i+1)
		}
		if fixtures[f.Name] {
			return fmt.Errorf("duplicate fixture name %q", f.Name)
		}
		fixtures[f.Name] = true
		if f.Clone == nil || f.Clone.URL == "" {
			return fmt.Errorf("fixture %q needs a clone url", f.Name)
		}
		if f.Clone.Depth < 0 {
			return fmt.Errorf("fixture %q has a negative depth", f.Name)
		}
	}

	seen := make(map[string]bool, len(s.Checks))
	for i := range s.Checks {
		c := &s.Checks[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("check %d: %w", i+1, err)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate check name %q", c.Name)
		}
		seen[c.Name] = true
		if c.Dir != "" && c.Fixture != "" {
			return fmt.Errorf("check %q sets both dir and fixture", c.Name)
		}
	}
	return nil
}
