// Package walker traverses directory trees depth first, pruning what the
// ignore rules exclude.
package walker

import (
	"sync"

	"github.com/bethropolis/ignorewalk/internal/ignore"
)

// SkippedReason clarifies why a file/directory was not yielded or not
// descended into.
type SkippedReason string

const (
	ReasonIgnoredHidden   SkippedReason = "Ignored (Hidden Rule)"
	ReasonIgnoredRule     SkippedReason = "Ignored (Gitignore/Custom Rule)"
	ReasonIgnoredOverride SkippedReason = "Ignored (Override Glob)"
	ReasonOtherFilesystem SkippedReason = "Skipped (Other Filesystem)"

	// Reasons recorded when file contents are read after the walk.
	ReasonSkippedSizeLimit  SkippedReason = "Skipped (Size Limit Exceeded)"
	ReasonSkippedNotRegular SkippedReason = "Skipped (Not a Regular File)"
	ReasonSkippedReadError  SkippedReason = "Skipped (Read Error)"
	ReasonSkippedInfoError  SkippedReason = "Skipped (File Info Error)"
)

// reasonFor maps the source that decided an ignore to a SkippedReason.
func reasonFor(m ignore.Match) SkippedReason {
	switch m.Source {
	case ignore.SourceHidden:
		return ReasonIgnoredHidden
	case ignore.SourceOverride:
		return ReasonIgnoredOverride
	default:
		return ReasonIgnoredRule
	}
}

// SkipFunc is called for every entry pruned by the ignore rules and for
// every directory that is yielded but not descended into because it lives on
// another filesystem.
type SkipFunc func(e *DirEntry, reason SkippedReason)

// SkippedItem holds information about a skipped path.
type SkippedItem struct {
	Path   string        `json:"path"`
	Reason SkippedReason `json:"reason"`
	IsDir  bool          `json:"is_dir"`
}

// SkippedTracker is a struct to track skipped items
type SkippedTracker struct {
	items []SkippedItem
	mutex sync.Mutex
}

// NewSkippedTracker creates a new SkippedTracker
func NewSkippedTracker(capacity int) *SkippedTracker {
	return &SkippedTracker{
		items: make([]SkippedItem, 0, capacity),
	}
}

// Track adds a skipped item to the tracker
func (st *SkippedTracker) Track(path string, reason SkippedReason, isDir bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.items = append(st.items, SkippedItem{Path: path, Reason: reason, IsDir: isDir})
}

// Handler returns a SkipFunc that records into st.
func (st *SkippedTracker) Handler() SkipFunc {
	return func(e *DirEntry, reason SkippedReason) {
		st.Track(e.Path(), reason, e.IsDir())
	}
}

// Items returns a copy of the tracked skipped items
func (st *SkippedTracker) Items() []SkippedItem {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	return append([]SkippedItem(nil), st.items...)
}
