package walker

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/ignorewalk/internal/ignore"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func requireSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
}

// sampleTree creates
//
//	root/b.txt
//	root/a/x.txt
//	root/a/y/z.txt
//	root/c/
func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	writeFile(t, filepath.Join(root, "a", "x.txt"), "x")
	writeFile(t, filepath.Join(root, "a", "y", "z.txt"), "z")
	mkdir(t, filepath.Join(root, "c"))
	return root
}

// isolated ignores everything outside the test's own directories.
func isolated(root string) Builder {
	return NewBuilder(root).With(WithParents(false), WithGitGlobal(false))
}

type walked struct {
	paths  []string
	depths []int
	errs   []error
}

// collect drains w, recording paths relative to base ("." for base itself).
func collect(t *testing.T, w *Walk, base string) walked {
	t.Helper()
	var out walked
	for {
		e, err := w.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			out.errs = append(out.errs, err)
			continue
		}
		rel, relErr := filepath.Rel(base, e.Path())
		require.NoError(t, relErr)
		out.paths = append(out.paths, filepath.ToSlash(rel))
		out.depths = append(out.depths, e.Depth())
	}
}

func TestWalkOrderAndDepth(t *testing.T) {
	root := sampleTree(t)
	got := collect(t, isolated(root).Build(), root)

	assert.Empty(t, got.errs)
	assert.Equal(t, []string{".", "a", "a/x.txt", "a/y", "a/y/z.txt", "b.txt", "c"}, got.paths)
	assert.Equal(t, []int{0, 1, 2, 2, 3, 1, 1}, got.depths)
}

func TestWalkEntryAccessors(t *testing.T) {
	root := sampleTree(t)
	w := isolated(root).Build()

	e, err := w.Next()
	require.NoError(t, err)
	assert.Equal(t, root, e.Path())
	assert.Equal(t, 0, e.Depth())
	assert.True(t, e.IsDir())
	assert.Equal(t, TypeDir, e.FileType())
	assert.False(t, e.PathIsSymlink())

	e, err = w.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", e.Name())
	assert.Equal(t, 1, e.Depth())

	e, err = w.Next()
	require.NoError(t, err)
	assert.Equal(t, "x.txt", e.Name())
	assert.Equal(t, TypeFile, e.FileType())
	assert.Equal(t, "file", e.FileType().String())
}

func TestWalkMaxDepth(t *testing.T) {
	root := sampleTree(t)

	got := collect(t, isolated(root).With(WithMaxDepth(1)).Build(), root)
	assert.Equal(t, []string{".", "a", "b.txt", "c"}, got.paths)

	got = collect(t, isolated(root).With(WithMaxDepth(0)).Build(), root)
	assert.Equal(t, []string{"."}, got.paths)

	got = collect(t, isolated(root).With(WithMaxDepth(2)).Build(), root)
	assert.Equal(t, []string{".", "a", "a/x.txt", "a/y", "b.txt", "c"}, got.paths)
}

func TestWalkPrunesIgnoredDirectories(t *testing.T) {
	root := sampleTree(t)
	mkdir(t, filepath.Join(root, ".git"))
	writeFile(t, filepath.Join(root, ".gitignore"), "a/\n")

	tracker := NewSkippedTracker(4)
	got := collect(t, isolated(root).With(WithSkipHandler(tracker.Handler())).Build(), root)

	assert.Equal(t, []string{".", "b.txt", "c"}, got.paths)

	reasons := map[string]SkippedReason{}
	for _, item := range tracker.Items() {
		rel, err := filepath.Rel(root, item.Path)
		require.NoError(t, err)
		reasons[filepath.ToSlash(rel)] = item.Reason
	}
	assert.Equal(t, map[string]SkippedReason{
		".git":       ReasonIgnoredHidden,
		".gitignore": ReasonIgnoredHidden,
		"a":          ReasonIgnoredRule,
	}, reasons, "children of a pruned directory are never seen")
}

func TestWalkHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "x")
	writeFile(t, filepath.Join(root, ".config", "app"), "x")
	writeFile(t, filepath.Join(root, "visible"), "x")

	got := collect(t, isolated(root).Build(), root)
	assert.Equal(t, []string{".", "visible"}, got.paths)

	got = collect(t, isolated(root).With(WithHidden(false)).Build(), root)
	assert.Equal(t, []string{".", ".config", ".config/app", ".env", "visible"}, got.paths)
}

func TestWalkRootIsNeverFiltered(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".hidden")
	writeFile(t, filepath.Join(root, "f"), "x")

	got := collect(t, isolated(root).Build(), root)
	assert.Equal(t, []string{".", "f"}, got.paths)
}

func TestWalkIgnoreFilesInSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", ".ignore"), "*.tmp\n")
	writeFile(t, filepath.Join(root, "sub", "a.tmp"), "x")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "x")
	writeFile(t, filepath.Join(root, "z.tmp"), "x")

	got := collect(t, isolated(root).Build(), root)
	assert.Equal(t, []string{".", "sub", "sub/b.txt", "z.tmp"}, got.paths,
		"rules of sub apply only below sub")
}

func TestWalkOverrides(t *testing.T) {
	root := sampleTree(t)
	writeFile(t, filepath.Join(root, "a", "main.go"), "package a")

	ob := ignore.NewOverrideBuilder(root)
	require.NoError(t, ob.Add("*.go"))
	o, err := ob.Build()
	require.NoError(t, err)

	got := collect(t, isolated(root).With(WithOverrides(o)).Build(), root)
	assert.Equal(t, []string{".", "a", "a/main.go", "a/y", "c"}, got.paths)
}

func TestWalkOverridesApplyToEveryRoot(t *testing.T) {
	base := t.TempDir()
	one := filepath.Join(base, "one")
	two := filepath.Join(base, "two")
	writeFile(t, filepath.Join(one, "a.go"), "package one")
	writeFile(t, filepath.Join(one, "a.txt"), "x")
	writeFile(t, filepath.Join(two, "b.go"), "package two")
	writeFile(t, filepath.Join(two, "b.txt"), "x")
	writeFile(t, filepath.Join(two, "sub", "c.go"), "package sub")

	ob := ignore.NewOverrideBuilder(one)
	require.NoError(t, ob.Add("*.go"))
	require.NoError(t, ob.Add("!/sub"))
	o, err := ob.Build()
	require.NoError(t, err)

	got := collect(t, isolated(one).Add(two).With(WithOverrides(o)).Build(), base)
	assert.Empty(t, got.errs)
	assert.Equal(t, []string{"one", "one/a.go", "two", "two/b.go"}, got.paths,
		"globs resolve against each root, anchored ones included")
}

func TestWalkCustomIgnoreFilename(t *testing.T) {
	root := sampleTree(t)
	writeFile(t, filepath.Join(root, ".walkignore"), "*.txt\n")

	b := isolated(root).With(WithCustomIgnoreFilename(".walkignore"), WithCustomIgnoreFilename(".walkignore"))
	assert.Equal(t, []string{".walkignore"}, b.Config().CustomIgnoreFilenames)

	got := collect(t, b.Build(), root)
	assert.Equal(t, []string{".", "a", "a/y", "c"}, got.paths)
}

func TestWalkAddIgnore(t *testing.T) {
	root := sampleTree(t)
	rules := filepath.Join(t.TempDir(), "rules")
	writeFile(t, rules, "x.txt\nc/\n")

	b, err := isolated(root).AddIgnore(rules)
	require.NoError(t, err)
	got := collect(t, b.Build(), root)
	assert.Equal(t, []string{".", "a", "a/y", "a/y/z.txt", "b.txt"}, got.paths)
}

func TestWalkAddIgnoreErrors(t *testing.T) {
	root := sampleTree(t)
	base := isolated(root)

	b, err := base.AddIgnore(filepath.Join(root, "missing"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, b.Config().Explicit)

	rules := filepath.Join(t.TempDir(), "rules")
	writeFile(t, rules, "[bad\nb.txt\n")
	b, err = base.AddIgnore(rules)
	assert.ErrorIs(t, err, ignore.ErrInvalidPattern)
	require.Len(t, b.Config().Explicit, 1)

	got := collect(t, b.Build(), root)
	assert.NotContains(t, got.paths, "b.txt", "valid lines still apply")
}

func TestBuilderIsImmutable(t *testing.T) {
	base := NewBuilder("r1")
	hidden := base.With(WithHidden(false))
	more := base.Add("r2")

	assert.True(t, base.Config().Hidden)
	assert.False(t, hidden.Config().Hidden)
	assert.Equal(t, []string{"r1"}, base.Config().Roots)
	assert.Equal(t, []string{"r1", "r2"}, more.Config().Roots)

	cfg := base.Config()
	cfg.Roots[0] = "changed"
	assert.Equal(t, []string{"r1"}, base.Config().Roots)
}

func TestDefaultConfig(t *testing.T) {
	cfg := NewBuilder(".").Config()
	assert.True(t, cfg.Hidden)
	assert.True(t, cfg.Ignore)
	assert.True(t, cfg.GitIgnore)
	assert.True(t, cfg.GitGlobal)
	assert.True(t, cfg.GitExclude)
	assert.True(t, cfg.Parents)
	assert.True(t, cfg.RequireGit)
	assert.False(t, cfg.FollowLinks)
	assert.False(t, cfg.SameFileSystem)
	assert.Equal(t, -1, cfg.MaxDepth)
}

func TestWalkIdempotent(t *testing.T) {
	root := sampleTree(t)
	b := isolated(root)

	first := collect(t, b.Build(), root)
	second := collect(t, b.Build(), root)
	assert.Equal(t, first, second)
}

func TestWalkIsSinglePass(t *testing.T) {
	root := sampleTree(t)
	w := isolated(root).Build()
	collect(t, w, root)

	e, err := w.Next()
	assert.Nil(t, e)
	assert.Equal(t, io.EOF, err)
}

func TestWalkMultipleRoots(t *testing.T) {
	one := sampleTree(t)
	two := t.TempDir()
	writeFile(t, filepath.Join(two, "only.txt"), "x")

	w := isolated(one).Add(two).With(WithMaxDepth(1)).Build()

	var paths []string
	var depths []int
	for e, err := range w.All() {
		require.NoError(t, err)
		paths = append(paths, e.Path())
		depths = append(depths, e.Depth())
	}
	assert.Equal(t, []string{
		one, filepath.Join(one, "a"), filepath.Join(one, "b.txt"), filepath.Join(one, "c"),
		two, filepath.Join(two, "only.txt"),
	}, paths)
	assert.Equal(t, []int{0, 1, 1, 1, 0, 1}, depths)
}

func TestWalkAllStopsEarly(t *testing.T) {
	root := sampleTree(t)
	n := 0
	for range isolated(root).Build().All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestWalkRelativeRoot(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "tree", "f.txt"), "x")
	t.Chdir(base)

	var paths []string
	for e, err := range isolated("tree").Build().All() {
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(e.Path()))
	}
	assert.Equal(t, []string{"tree", "tree/f.txt"}, paths)
}

func TestWalkMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	w := NewWalk(missing)

	e, err := w.Next()
	assert.Nil(t, e)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, missing, pe.Path)
	assert.Equal(t, 0, pe.Depth)

	_, err = w.Next()
	assert.Equal(t, io.EOF, err)
}

func TestWalkFileRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "single.txt")
	writeFile(t, file, "x")

	got := collect(t, isolated(file).Build(), file)
	assert.Equal(t, []string{"."}, got.paths)
	assert.Empty(t, got.errs)
}

func TestWalkSymlinkNotFollowed(t *testing.T) {
	requireSymlinks(t)
	root := sampleTree(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "link")))

	w := isolated(root).Build()
	var link *DirEntry
	for e, err := range w.All() {
		require.NoError(t, err)
		if e.Name() == "link" {
			link = e
		}
	}
	require.NotNil(t, link)
	assert.Equal(t, TypeSymlink, link.FileType())
	assert.True(t, link.PathIsSymlink())
	assert.False(t, link.IsDir())
}

func TestWalkSymlinkFollowed(t *testing.T) {
	requireSymlinks(t)
	root := sampleTree(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "a", "y"), filepath.Join(root, "link")))

	got := collect(t, isolated(root).With(WithFollowLinks(true)).Build(), root)
	assert.Empty(t, got.errs)
	assert.Equal(t, []string{".", "a", "a/x.txt", "a/y", "a/y/z.txt", "b.txt", "c", "link", "link/z.txt"}, got.paths)
}

func TestWalkRootSymlinkAlwaysFollowed(t *testing.T) {
	requireSymlinks(t)
	root := sampleTree(t)
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(root, link))

	w := isolated(link).With(WithMaxDepth(1)).Build()
	e, err := w.Next()
	require.NoError(t, err)
	assert.True(t, e.IsDir())
	assert.True(t, e.PathIsSymlink())

	got := collect(t, w, link)
	assert.Equal(t, []string{"a", "b.txt", "c"}, got.paths)
}

func TestWalkSymlinkLoop(t *testing.T) {
	requireSymlinks(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), "x")
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	got := collect(t, isolated(root).With(WithFollowLinks(true)).Build(), root)
	assert.Equal(t, []string{".", "f", "loop"}, got.paths)
	require.Len(t, got.errs, 1)

	err := got.errs[0]
	assert.ErrorIs(t, err, ErrLoop)
	var le *LoopError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, root, le.Ancestor)
	assert.Equal(t, filepath.Join(root, "loop"), le.Child)
	assert.Equal(t, 1, le.Depth)
	assert.False(t, IsNotFound(err))
}

func TestWalkBrokenSymlink(t *testing.T) {
	requireSymlinks(t)
	root := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))
	writeFile(t, filepath.Join(root, "z"), "x")

	got := collect(t, isolated(root).Build(), root)
	assert.Equal(t, []string{".", "dangling", "z"}, got.paths)
	assert.Empty(t, got.errs)

	got = collect(t, isolated(root).With(WithFollowLinks(true)).Build(), root)
	assert.Equal(t, []string{".", "z"}, got.paths, "the walk goes on after the error")
	require.Len(t, got.errs, 1)
	assert.True(t, IsNotFound(got.errs[0]))

	var pe *PathError
	require.ErrorAs(t, got.errs[0], &pe)
	assert.Equal(t, 1, pe.Depth)
}

func TestWalkSameFileSystem(t *testing.T) {
	root := t.TempDir()
	mnt := filepath.Join(root, "mnt")
	writeFile(t, filepath.Join(mnt, "inner"), "x")
	writeFile(t, filepath.Join(root, "local", "f"), "x")

	// every directory gets its own inode; mnt lives on device 2
	inodes := map[string]uint64{}
	orig := statFileID
	statFileID = func(path string) (fileID, error) {
		ino, ok := inodes[path]
		if !ok {
			ino = uint64(len(inodes) + 1)
			inodes[path] = ino
		}
		if path == mnt {
			return fileID{dev: 2, ino: ino}, nil
		}
		return fileID{dev: 1, ino: ino}, nil
	}
	t.Cleanup(func() { statFileID = orig })

	got := collect(t, isolated(root).Build(), root)
	assert.Equal(t, []string{".", "local", "local/f", "mnt", "mnt/inner"}, got.paths)

	tracker := NewSkippedTracker(1)
	got = collect(t, isolated(root).With(WithSameFileSystem(true), WithSkipHandler(tracker.Handler())).Build(), root)
	assert.Equal(t, []string{".", "local", "local/f", "mnt"}, got.paths)
	assert.Equal(t, []SkippedItem{{Path: mnt, Reason: ReasonOtherFilesystem, IsDir: true}}, tracker.Items())
}

func TestWalkNonUTF8Names(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a\xfe"), nil, 0o644); err != nil {
		t.Skipf("filesystem rejects non-UTF-8 names: %v", err)
	}
	writeFile(t, filepath.Join(root, "a\xff"), "")
	writeFile(t, filepath.Join(root, ".ignore"), "a\xfe\n")

	got := collect(t, isolated(root).Build(), root)
	assert.Empty(t, got.errs)
	assert.Equal(t, []string{".", "a\xff"}, got.paths, "only the listed byte is ignored")
}

// lockedDir creates root/name holding one file and removes every permission
// from it for the duration of the test.
func lockedDir(t *testing.T, root, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}
	dir := filepath.Join(root, name)
	writeFile(t, filepath.Join(dir, "inner.txt"), "x")
	require.NoError(t, os.Chmod(dir, 0))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	return dir
}

func TestWalkUnreadableDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "x")
	writeFile(t, filepath.Join(root, "z.txt"), "x")
	locked := lockedDir(t, root, "locked")

	got := collect(t, isolated(root).Build(), root)
	assert.Equal(t, []string{".", "a.txt", "locked", "z.txt"}, got.paths,
		"siblings are still walked")

	require.Len(t, got.errs, 1)
	var pe *PathError
	require.ErrorAs(t, got.errs[0], &pe)
	assert.Equal(t, locked, pe.Path)
	assert.Equal(t, 1, pe.Depth)
	assert.True(t, errors.Is(got.errs[0], fs.ErrPermission))
}

func TestWalkIgnoredUnreadableDirectoryIsNeverOpened(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, ".git"))
	writeFile(t, filepath.Join(root, ".gitignore"), "locked/\n")
	writeFile(t, filepath.Join(root, "a.txt"), "x")
	lockedDir(t, root, "locked")

	got := collect(t, isolated(root).Build(), root)
	assert.Empty(t, got.errs)
	assert.Equal(t, []string{".", "a.txt"}, got.paths)
}

func TestWalkErrorsAreTyped(t *testing.T) {
	le := &LoopError{Ancestor: "/a", Child: "/a/b", Depth: 1}
	assert.True(t, errors.Is(le, ErrLoop))
	assert.Contains(t, le.Error(), "/a/b")

	pe := &PathError{Path: "/x", Depth: 3, Err: os.ErrNotExist}
	assert.True(t, IsNotFound(pe))
	assert.Contains(t, pe.Error(), "depth 3")
	assert.False(t, IsNotFound(&PathError{Path: "/x", Err: os.ErrPermission}))
}
