package walker

import (
	"io"
	"iter"
	"path/filepath"

	"github.com/bethropolis/ignorewalk/internal/ignore"
	"github.com/bethropolis/ignorewalk/internal/utils"
)

// Walk is a single-pass, pull-based traversal of the configured roots. Each
// call to Next does the work for exactly one entry or error; nothing runs in
// between. A Walk must not be used from several goroutines at once.
type Walk struct {
	cfg     Config
	log     utils.Logger
	nextIdx int
	started bool
	global  *ignore.Set
	cur     *state
}

func newWalk(cfg Config) *Walk {
	return &Walk{cfg: cfg, log: utils.OrNoop(cfg.Logger)}
}

// Next returns the next entry. Errors are per entry: after a *PathError or a
// *LoopError the walk continues with the following call. io.EOF marks the
// end of the walk.
func (w *Walk) Next() (*DirEntry, error) {
	if !w.started {
		w.started = true
		w.loadGlobal()
	}

	for {
		if w.cur == nil {
			if w.nextIdx >= len(w.cfg.Roots) {
				return nil, io.EOF
			}
			root := w.cfg.Roots[w.nextIdx]
			w.nextIdx++

			st, err := w.open(root)
			if err != nil {
				return nil, err
			}
			w.cur = st
		}

		e, err := w.cur.step()
		if err == io.EOF {
			w.log.Debug("walker: finished root %s", w.cur.root)
			w.cur = nil
			continue
		}
		return e, err
	}
}

// All adapts the walk to a range-over-func sequence. Stopping the loop early
// abandons the walk.
func (w *Walk) All() iter.Seq2[*DirEntry, error] {
	return func(yield func(*DirEntry, error) bool) {
		for {
			e, err := w.Next()
			if err == io.EOF {
				return
			}
			if !yield(e, err) {
				return
			}
		}
	}
}

// loadGlobal reads the global excludes once for all roots of the walk.
func (w *Walk) loadGlobal() {
	if !w.cfg.GitGlobal || len(w.cfg.Roots) == 0 {
		return
	}
	set, err := ignore.LoadGlobal(w.cfg.Roots[0])
	if err != nil {
		w.log.Warn("walker: global excludes: %v", err)
	}
	if set != nil {
		w.log.Debug("walker: %d global exclude patterns", set.Len())
	}
	w.global = set
}

// open prepares the traversal of one root with a fresh ignore Stack.
func (w *Walk) open(root string) (*state, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}

	stack, err := ignore.NewFromConfig(ignore.Config{
		RootDir:               abs,
		Hidden:                w.cfg.Hidden,
		DotIgnore:             w.cfg.Ignore,
		GitIgnore:             w.cfg.GitIgnore,
		GitExclude:            w.cfg.GitExclude,
		Parents:               w.cfg.Parents,
		RequireGit:            w.cfg.RequireGit,
		CustomIgnoreFilenames: w.cfg.CustomIgnoreFilenames,
		Overrides:             w.cfg.Overrides,
		Explicit:              w.cfg.Explicit,
		Global:                w.global,
		Logger:                w.log,
	})
	if err != nil {
		return nil, &PathError{Path: root, Err: err}
	}

	w.log.Debug("walker: starting root %s (followLinks=%v sameFS=%v maxDepth=%d)",
		root, w.cfg.FollowLinks, w.cfg.SameFileSystem, w.cfg.MaxDepth)
	return &state{
		root:    root,
		cfg:     &w.cfg,
		log:     w.log,
		stack:   stack,
		pending: []item{{path: root, abs: abs}},
	}, nil
}
