package ignore

import (
	"path/filepath"
	"strings"
)

// perDirSources lists the per-directory sources in precedence order.
var perDirSources = []struct {
	source Source
	set    func(*layer) *Set
}{
	{SourceCustom, func(l *layer) *Set { return l.custom }},
	{SourceGitignore, func(l *layer) *Set { return l.gitignore }},
	{SourceDotIgnore, func(l *layer) *Set { return l.dotIgnore }},
	{SourceExclude, func(l *layer) *Set { return l.exclude }},
}

// ShouldSkip reports whether the entry at path (absolute) should be pruned.
func (s *Stack) ShouldSkip(path string, isDir bool) bool {
	return s.Matched(path, isDir).IsIgnore()
}

// Matched consults every source in precedence order and returns the first
// verdict that is not None:
//
//	overrides > custom files > .gitignore > .ignore > info/exclude >
//	explicit files > global excludes > hidden rule
//
// Per-directory sources are searched deepest directory first.
func (s *Stack) Matched(path string, isDir bool) Match {
	if s == nil {
		return Match{}
	}

	if v := s.overrides.Matched(path, isDir); v != None {
		return s.decided(path, Match{Verdict: v, Source: SourceOverride})
	}

	for _, src := range perDirSources {
		for i := len(s.layers) - 1; i >= 0; i-- {
			set := src.set(s.layers[i])
			if set == nil {
				continue
			}
			if v, p := set.Match(path, isDir); v != None {
				return s.decided(path, Match{Verdict: v, Source: src.source, Pattern: p})
			}
		}
	}

	for i := len(s.explicit) - 1; i >= 0; i-- {
		if v, p := s.explicit[i].Match(path, isDir); v != None {
			return s.decided(path, Match{Verdict: v, Source: SourceExplicit, Pattern: p})
		}
	}

	if s.global != nil && s.gitAllowed(s.inGit()) {
		if v, p := s.global.Match(path, isDir); v != None {
			return s.decided(path, Match{Verdict: v, Source: SourceGlobal, Pattern: p})
		}
	}

	if s.hidden && isHidden(path) {
		return s.decided(path, Match{Verdict: Ignored, Source: SourceHidden})
	}
	return Match{}
}

func (s *Stack) decided(path string, m Match) Match {
	if m.Pattern != nil {
		s.logger.Debug("ignore.Matched: %q %s by %s (%s)", path, m.Verdict, m.Source, m.Pattern)
	} else {
		s.logger.Debug("ignore.Matched: %q %s by %s", path, m.Verdict, m.Source)
	}
	return m
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
