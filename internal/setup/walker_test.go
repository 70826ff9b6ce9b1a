package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/ignorewalk/internal/ignore"
	"github.com/bethropolis/ignorewalk/internal/walker"
)

func noLog(string, ...interface{}) {}

func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"main.go", "README.md", "notes.txt", "sub/x.go", "sub/y.tmp"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return root
}

func names(t *testing.T, b walker.Builder, root string) []string {
	t.Helper()
	var out []string
	for e, err := range b.Build().All() {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, e.Path())
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func baseConfig(root string) WalkerConfig {
	return WalkerConfig{
		Roots:      []string{root},
		Hidden:     true,
		Ignore:     true,
		GitIgnore:  true,
		GitExclude: true,
		RequireGit: true,
		MaxDepth:   -1,
	}
}

func TestConfigureWalkerExtensions(t *testing.T) {
	root := tree(t)
	cfg := baseConfig(root)
	cfg.Extensions = []string{"go"}

	b, err := ConfigureWalker(cfg, noLog)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "main.go", "sub", "sub/x.go"}, names(t, b, root))
}

func TestConfigureWalkerGlobs(t *testing.T) {
	root := tree(t)
	cfg := baseConfig(root)
	cfg.Globs = []string{"!*.tmp", "!sub/x.go"}

	b, err := ConfigureWalker(cfg, noLog)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "README.md", "main.go", "notes.txt", "sub"}, names(t, b, root))
}

func TestConfigureWalkerIgnoreFilesAndNames(t *testing.T) {
	root := tree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".walkignore"), []byte("*.md\n"), 0o644))
	rules := filepath.Join(t.TempDir(), "rules")
	require.NoError(t, os.WriteFile(rules, []byte("[broken\n*.txt\n"), 0o644))

	cfg := baseConfig(root)
	cfg.IgnoreFileNames = []string{".walkignore", " "}
	cfg.IgnoreFiles = []string{rules}
	cfg.MaxDepth = 1

	b, err := ConfigureWalker(cfg, noLog)
	require.NoError(t, err, "malformed lines are only logged")
	assert.Equal(t, []string{".walkignore"}, b.Config().CustomIgnoreFilenames)
	assert.Equal(t, []string{".", "main.go", "sub"}, names(t, b, root))
}

func TestConfigureWalkerErrors(t *testing.T) {
	root := tree(t)

	cfg := baseConfig(root)
	cfg.Globs = []string{"[oops"}
	_, err := ConfigureWalker(cfg, noLog)
	assert.ErrorIs(t, err, ignore.ErrInvalidPattern)

	cfg = baseConfig(root)
	cfg.IgnoreFiles = []string{filepath.Join(root, "missing")}
	_, err = ConfigureWalker(cfg, noLog)
	require.Error(t, err)
	assert.True(t, walker.IsNotFound(err))

	_, err = ConfigureWalker(WalkerConfig{}, noLog)
	assert.Error(t, err)
}

func TestConfigureWalkerTracker(t *testing.T) {
	root := tree(t)
	cfg := baseConfig(root)
	cfg.Tracker = walker.NewSkippedTracker(1)
	cfg.Globs = []string{"!*.md"}

	b, err := ConfigureWalker(cfg, noLog)
	require.NoError(t, err)
	names(t, b, root)

	items := cfg.Tracker.Items()
	require.Len(t, items, 1)
	assert.Equal(t, walker.ReasonIgnoredOverride, items[0].Reason)
	assert.Equal(t, filepath.Join(root, "README.md"), items[0].Path)
}
