package walker

import "path/filepath"

// FileType classifies a yielded entry.
type FileType int

const (
	TypeOther FileType = iota
	TypeFile
	TypeDir
	TypeSymlink
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	case TypeSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// DirEntry is one path yielded by a Walk. It is never modified after it is
// returned.
type DirEntry struct {
	path     string
	abs      string
	depth    int
	typ      FileType
	followed bool
}

// Path returns the entry's path, absolute or relative in the same way as the
// root it was reached from.
func (e *DirEntry) Path() string { return e.path }

// Depth is 0 for a root and grows by one per directory level.
func (e *DirEntry) Depth() int { return e.depth }

// Name returns the last element of the path.
func (e *DirEntry) Name() string { return filepath.Base(e.path) }

// FileType returns the type of the entry. For a followed symlink it is the
// type of the target.
func (e *DirEntry) FileType() FileType { return e.typ }

func (e *DirEntry) IsDir() bool { return e.typ == TypeDir }

// PathIsSymlink reports whether the path itself is a symbolic link, followed
// or not.
func (e *DirEntry) PathIsSymlink() bool { return e.followed || e.typ == TypeSymlink }
