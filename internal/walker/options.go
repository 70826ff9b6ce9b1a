package walker

import (
	"slices"

	"github.com/bethropolis/ignorewalk/internal/ignore"
	"github.com/bethropolis/ignorewalk/internal/utils"
)

// Config is the full description of a walk. Builder produces it; every Walk
// keeps its own copy.
type Config struct {
	Roots []string

	Hidden     bool // skip entries whose name starts with a dot
	Ignore     bool // read .ignore files
	GitIgnore  bool // read .gitignore files
	GitGlobal  bool // read the global git excludes file
	GitExclude bool // read .git/info/exclude
	Parents    bool // read ignore files in the ancestors of each root
	RequireGit bool // git sources only apply inside a repository

	FollowLinks    bool
	SameFileSystem bool
	MaxDepth       int // negative means unbounded

	CustomIgnoreFilenames []string
	Explicit              []*ignore.Set
	Overrides             *ignore.Override

	Logger      utils.Logger
	SkipHandler SkipFunc
}

// DefaultConfig returns the configuration used by NewWalk: every ignore
// source on, hidden entries skipped, links not followed, no depth bound.
func DefaultConfig() Config {
	return Config{
		Hidden:     true,
		Ignore:     true,
		GitIgnore:  true,
		GitGlobal:  true,
		GitExclude: true,
		Parents:    true,
		RequireGit: true,
		MaxDepth:   -1,
		Logger:     utils.NoopLogger{},
	}
}

func (c Config) clone() Config {
	c.Roots = slices.Clone(c.Roots)
	c.CustomIgnoreFilenames = slices.Clone(c.CustomIgnoreFilenames)
	c.Explicit = slices.Clone(c.Explicit)
	return c
}

// Option is a functional option for configuring a walk
type Option func(*Config)

func WithHidden(yes bool) Option     { return func(c *Config) { c.Hidden = yes } }
func WithIgnore(yes bool) Option     { return func(c *Config) { c.Ignore = yes } }
func WithGitIgnore(yes bool) Option  { return func(c *Config) { c.GitIgnore = yes } }
func WithGitGlobal(yes bool) Option  { return func(c *Config) { c.GitGlobal = yes } }
func WithGitExclude(yes bool) Option { return func(c *Config) { c.GitExclude = yes } }
func WithParents(yes bool) Option    { return func(c *Config) { c.Parents = yes } }
func WithRequireGit(yes bool) Option { return func(c *Config) { c.RequireGit = yes } }

// WithFollowLinks descends into symlinked directories and reports files
// behind symlinks with the type of their target.
func WithFollowLinks(yes bool) Option { return func(c *Config) { c.FollowLinks = yes } }

// WithSameFileSystem refuses to descend into directories on a device other
// than the root's.
func WithSameFileSystem(yes bool) Option { return func(c *Config) { c.SameFileSystem = yes } }

// WithMaxDepth bounds the depth of yielded entries. A negative depth removes
// the bound; 0 yields only the roots.
func WithMaxDepth(depth int) Option { return func(c *Config) { c.MaxDepth = depth } }

// WithOverrides sets the override globs, which take precedence over every
// ignore file.
func WithOverrides(o *ignore.Override) Option { return func(c *Config) { c.Overrides = o } }

// WithCustomIgnoreFilename adds a file name to read in every directory with
// precedence over .gitignore. Names keep their insertion order; adding a
// name twice has no effect.
func WithCustomIgnoreFilename(name string) Option {
	return func(c *Config) {
		if !slices.Contains(c.CustomIgnoreFilenames, name) {
			c.CustomIgnoreFilenames = append(c.CustomIgnoreFilenames, name)
		}
	}
}

// WithRoot adds another root. Roots are walked in the order they were added.
func WithRoot(path string) Option {
	return func(c *Config) { c.Roots = append(c.Roots, path) }
}

func WithLogger(logger utils.Logger) Option {
	return func(c *Config) { c.Logger = utils.OrNoop(logger) }
}

func WithSkipHandler(fn SkipFunc) Option { return func(c *Config) { c.SkipHandler = fn } }

// Builder is an immutable walk configuration. Every method returns a new
// Builder and leaves the receiver untouched, so a Builder can be shared and
// extended freely.
type Builder struct {
	cfg Config
}

// NewBuilder starts from DefaultConfig with a single root.
func NewBuilder(root string) Builder {
	cfg := DefaultConfig()
	cfg.Roots = []string{root}
	return Builder{cfg: cfg}
}

// With applies opts to a copy of b.
func (b Builder) With(opts ...Option) Builder {
	cfg := b.cfg.clone()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Builder{cfg: cfg}
}

// Add returns a Builder with path as an extra root.
func (b Builder) Add(path string) Builder {
	return b.With(WithRoot(path))
}

// AddIgnore loads one ignore file whose rules apply to the whole walk, below
// the per-directory files and above the global excludes. A read failure
// returns b unchanged with a *PathError. Malformed lines are reported as
// *ignore.PatternError values while the valid lines are still added.
func (b Builder) AddIgnore(path string) (Builder, error) {
	set, err := ignore.ParseFile(path)
	if set == nil {
		return b, &PathError{Path: path, Err: err}
	}
	next := b.With()
	next.cfg.Explicit = append(next.cfg.Explicit, set)
	return next, err
}

// Config returns a copy of the configuration.
func (b Builder) Config() Config { return b.cfg.clone() }

// Build creates a new Walk. Walks built from the same Builder share no
// mutable state.
func (b Builder) Build() *Walk {
	return newWalk(b.cfg.clone())
}

// NewWalk walks root with DefaultConfig.
func NewWalk(root string) *Walk {
	return NewBuilder(root).Build()
}
