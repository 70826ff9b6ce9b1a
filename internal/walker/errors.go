package walker

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrLoop is matched by every *LoopError.
var ErrLoop = errors.New("filesystem loop")

// PathError is an I/O failure on one path of the walk. The walk goes on
// after it is reported.
type PathError struct {
	Path  string
	Depth int
	Err   error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("walker: %s (depth %d): %v", e.Path, e.Depth, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// LoopError reports a directory that resolves to one of its own ancestors.
// The directory is yielded but not descended into.
type LoopError struct {
	Ancestor string
	Child    string
	Depth    int
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("walker: filesystem loop: %s points to ancestor %s", e.Child, e.Ancestor)
}

func (e *LoopError) Is(target error) bool { return target == ErrLoop }

// IsNotFound reports whether err is an I/O error caused by a path that does
// not exist, typically a broken symlink or an entry removed during the walk.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
