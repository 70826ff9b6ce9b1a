package ignore

import "github.com/bethropolis/ignorewalk/internal/utils"

// Option functions for configuration
type Option func(*Stack)

// WithHidden skips entries whose name starts with a dot.
func WithHidden(yes bool) Option {
	return func(s *Stack) {
		s.hidden = yes
	}
}

// WithDotIgnore reads .ignore files.
func WithDotIgnore(yes bool) Option {
	return func(s *Stack) {
		s.dotIgnore = yes
	}
}

// WithGitIgnore reads .gitignore files.
func WithGitIgnore(yes bool) Option {
	return func(s *Stack) {
		s.gitIgnore = yes
	}
}

// WithGitExclude reads .git/info/exclude of every repository entered.
func WithGitExclude(yes bool) Option {
	return func(s *Stack) {
		s.gitExclude = yes
	}
}

// WithParents loads ignore files from the ancestors of the root directory.
func WithParents(yes bool) Option {
	return func(s *Stack) {
		s.parents = yes
	}
}

// WithRequireGit drops git-sourced rules outside of a git repository.
func WithRequireGit(yes bool) Option {
	return func(s *Stack) {
		s.requireGit = yes
	}
}

// WithCustomIgnoreFilenames adds ignore file names read in every directory,
// with precedence over .gitignore. Later names win over earlier ones.
func WithCustomIgnoreFilenames(names []string) Option {
	return func(s *Stack) {
		s.customNames = append([]string(nil), names...)
	}
}

func WithOverrides(o *Override) Option {
	return func(s *Stack) {
		s.overrides = o
	}
}

// WithExplicit adds ignore files that apply to the whole walk. Their rules
// are resolved against the walk root.
func WithExplicit(sets []*Set) Option {
	return func(s *Stack) {
		s.explicit = append([]*Set(nil), sets...)
	}
}

// WithGlobal sets the global excludes. A nil set disables them.
func WithGlobal(set *Set) Option {
	return func(s *Stack) {
		s.global = set
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(s *Stack) {
		if logger != nil {
			s.logger = logger
		}
	}
}
