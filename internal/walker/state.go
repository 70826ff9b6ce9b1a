package walker

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bethropolis/ignorewalk/internal/ignore"
	"github.com/bethropolis/ignorewalk/internal/utils"
)

// item is one element of the pending stack: a path still to be classified,
// or the marker that closes a directory.
type item struct {
	path   string
	abs    string
	depth  int
	dirent fs.DirEntry // nil for a root
	leave  bool
}

// ancestor is a directory whose children are still pending.
type ancestor struct {
	path  string
	id    fileID
	known bool
}

// state walks one root.
type state struct {
	root  string
	cfg   *Config
	log   utils.Logger
	stack *ignore.Stack

	pending []item
	open    []ancestor

	rootDev     uint64
	haveRootDev bool

	// descend is the directory yielded by the previous step, entered at the
	// start of the next one.
	descend *DirEntry
}

func (s *state) step() (*DirEntry, error) {
	if d := s.descend; d != nil {
		s.descend = nil
		if err := s.enter(d); err != nil {
			return nil, err
		}
	}

	for len(s.pending) > 0 {
		it := s.pending[len(s.pending)-1]
		s.pending = s.pending[:len(s.pending)-1]

		if it.leave {
			s.leave()
			continue
		}

		e, err := s.classify(it)
		if err != nil {
			return nil, err
		}

		if e.depth > 0 {
			if m := s.stack.Matched(e.abs, e.IsDir()); m.IsIgnore() {
				s.log.Debug("walker: pruned %s (%s)", e.path, m.Source)
				s.skipped(e, reasonFor(m))
				continue
			}
		}

		if e.IsDir() && (s.cfg.MaxDepth < 0 || e.depth < s.cfg.MaxDepth) {
			s.descend = e
		}
		return e, nil
	}
	return nil, io.EOF
}

// classify determines the type of it. Roots are always resolved through
// symlinks; other links only when following is enabled.
func (s *state) classify(it item) (*DirEntry, error) {
	e := &DirEntry{path: it.path, abs: it.abs, depth: it.depth}

	var mode fs.FileMode
	if it.dirent == nil {
		fi, err := os.Stat(it.abs)
		if err != nil {
			return nil, &PathError{Path: it.path, Depth: it.depth, Err: err}
		}
		mode = fi.Mode()
		if lfi, err := os.Lstat(it.abs); err == nil && lfi.Mode()&fs.ModeSymlink != 0 {
			e.followed = true
		}
	} else {
		mode = it.dirent.Type()
		if mode&fs.ModeSymlink != 0 && s.cfg.FollowLinks {
			fi, err := os.Stat(it.abs)
			if err != nil {
				return nil, &PathError{Path: it.path, Depth: it.depth, Err: err}
			}
			mode = fi.Mode()
			e.followed = true
		}
	}

	e.typ = fileTypeOf(mode)
	return e, nil
}

func fileTypeOf(mode fs.FileMode) FileType {
	switch {
	case mode.IsDir():
		return TypeDir
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	case mode.IsRegular():
		return TypeFile
	default:
		return TypeOther
	}
}

// enter reads the directory d, pushes its ignore layer and queues its
// children so that they pop in name order.
func (s *state) enter(d *DirEntry) error {
	id, idErr := statFileID(d.abs)
	if idErr == nil {
		if d.depth == 0 {
			s.rootDev, s.haveRootDev = id.dev, true
		} else if s.cfg.SameFileSystem && s.haveRootDev && id.dev != s.rootDev {
			s.log.Debug("walker: not descending into %s, it is on another filesystem", d.path)
			s.skipped(d, ReasonOtherFilesystem)
			return nil
		}
		for _, a := range s.open {
			if a.known && a.id == id {
				s.log.Debug("walker: %s is a loop back to %s", d.path, a.path)
				return &LoopError{Ancestor: a.path, Child: d.path, Depth: d.depth}
			}
		}
	} else {
		s.log.Debug("walker: no file id for %s: %v", d.path, idErr)
	}

	entries, err := os.ReadDir(d.abs)
	if err != nil {
		return &PathError{Path: d.path, Depth: d.depth, Err: err}
	}

	if err := s.stack.Push(d.abs); err != nil {
		s.log.Warn("walker: ignore files in %s: %v", d.path, err)
	}
	s.open = append(s.open, ancestor{path: d.path, id: id, known: idErr == nil})

	s.pending = append(s.pending, item{leave: true})
	for i := len(entries) - 1; i >= 0; i-- {
		name := entries[i].Name()
		s.pending = append(s.pending, item{
			path:   filepath.Join(d.path, name),
			abs:    filepath.Join(d.abs, name),
			depth:  d.depth + 1,
			dirent: entries[i],
		})
	}
	s.log.Debug("walker: descending into %s (%d entries)", d.path, len(entries))
	return nil
}

func (s *state) leave() {
	s.stack.Pop()
	if n := len(s.open); n > 0 {
		s.open = s.open[:n-1]
	}
}

func (s *state) skipped(e *DirEntry, reason SkippedReason) {
	if s.cfg.SkipHandler != nil {
		s.cfg.SkipHandler(e, reason)
	}
}
