package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bethropolis/ignorewalk/internal/utils"
)

// New creates a Stack for a walk rooted at rootDir. Ancestors of rootDir are
// inspected for .git entries and, with parents enabled, their ignore files
// are loaded. The root's own files are loaded by the first Push.
func New(rootDir string, opts ...Option) (*Stack, error) {
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("ignore: failed to get absolute path for rootDir '%s': %w", rootDir, err)
	}

	s := &Stack{
		rootDir:    absRootDir,
		hidden:     true,
		dotIgnore:  true,
		gitIgnore:  true,
		gitExclude: true,
		parents:    true,
		requireGit: true,
		logger:     utils.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.init()
	return s, nil
}

func (s *Stack) init() {
	s.logger.Debug("ignore.New: root %s (hidden=%v parents=%v requireGit=%v)",
		s.rootDir, s.hidden, s.parents, s.requireGit)

	var chain []string
	for dir := s.rootDir; ; {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		chain = append(chain, parent)
		dir = parent
	}

	// the nearest repository wins, the root itself included
	repoRoot := ""
	inGit := false
	for i := len(chain) - 1; i >= 0; i-- {
		dir := chain[i]
		_, isRepo := resolveGitDir(dir)
		if isRepo {
			repoRoot = dir
		}
		inGit = inGit || isRepo
		if !s.parents {
			continue
		}
		l, err := s.load(dir, inGit)
		if err != nil {
			s.logger.Warn("ignore.New: %v", err)
		}
		s.layers = append(s.layers, l)
	}
	s.parentLayers = len(s.layers)
	s.baseInGit = inGit
	if _, ok := resolveGitDir(s.rootDir); ok {
		repoRoot = s.rootDir
	}

	// overrides and explicit files apply to the whole walk, wherever they
	// were rooted
	s.overrides = s.overrides.WithRoot(s.rootDir)
	for i, set := range s.explicit {
		s.explicit[i] = set.WithRoot(s.rootDir)
	}

	if s.global != nil {
		if repoRoot == "" {
			repoRoot = s.rootDir
		}
		s.global = s.global.WithRoot(repoRoot)
	}
}

// Push loads the ignore files of dir and makes them the deepest layer. The
// returned error collects unreadable files and malformed lines; the valid
// rules are in effect regardless.
func (s *Stack) Push(dir string) error {
	l, err := s.load(dir, s.inGit())
	s.layers = append(s.layers, l)
	return err
}

// Pop drops the deepest layer. Layers loaded from ancestors of the root are
// never popped.
func (s *Stack) Pop() {
	if len(s.layers) > s.parentLayers {
		s.layers[len(s.layers)-1] = nil
		s.layers = s.layers[:len(s.layers)-1]
	}
}

// Depth returns the number of layers pushed below the root's ancestors.
func (s *Stack) Depth() int {
	return len(s.layers) - s.parentLayers
}

// RootDir returns the absolute walk root.
func (s *Stack) RootDir() string { return s.rootDir }

func (s *Stack) inGit() bool {
	if n := len(s.layers); n > 0 {
		return s.layers[n-1].inGit
	}
	return s.baseInGit
}

func (s *Stack) gitAllowed(inGit bool) bool {
	return inGit || !s.requireGit
}

func (s *Stack) load(dir string, parentInGit bool) (*layer, error) {
	gitDir, isRepo := resolveGitDir(dir)
	l := &layer{dir: dir, inGit: parentInGit || isRepo}

	var errs []error
	collect := func(b *Builder, path string) {
		if err := s.addFile(b, path); err != nil {
			errs = append(errs, err)
		}
	}

	if len(s.customNames) > 0 {
		b := NewBuilder(dir)
		for _, name := range s.customNames {
			collect(b, filepath.Join(dir, name))
		}
		l.custom = buildNonEmpty(b)
	}
	if s.gitIgnore && s.gitAllowed(l.inGit) {
		b := NewBuilder(dir)
		collect(b, filepath.Join(dir, GitignoreName))
		l.gitignore = buildNonEmpty(b)
	}
	if s.dotIgnore {
		b := NewBuilder(dir)
		collect(b, filepath.Join(dir, DotIgnoreName))
		l.dotIgnore = buildNonEmpty(b)
	}
	if s.gitExclude && gitDir != "" {
		b := NewBuilder(dir)
		collect(b, filepath.Join(gitDir, "info", "exclude"))
		l.exclude = buildNonEmpty(b)
	}
	return l, errors.Join(errs...)
}

// addFile adds path to b. A missing file is not an error.
func (s *Stack) addFile(b *Builder, path string) error {
	err := b.AddFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	var pe *PatternError
	if err == nil || errors.As(err, &pe) {
		s.logger.Debug("ignore: loaded %s", path)
	}
	return err
}

func buildNonEmpty(b *Builder) *Set {
	if b.Len() == 0 {
		return nil
	}
	return b.Build()
}

// resolveGitDir reports whether dir holds a .git entry and where its git
// directory lives. A ".git" file written by worktrees and submodules
// ("gitdir: <path>") is followed.
func resolveGitDir(dir string) (string, bool) {
	dotGit := filepath.Join(dir, ".git")
	fi, err := os.Stat(dotGit)
	if err != nil {
		return "", false
	}
	if fi.IsDir() {
		return dotGit, true
	}

	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", true
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !ok {
		return "", true
	}
	gitDir := strings.TrimSpace(rest)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	return gitDir, true
}
