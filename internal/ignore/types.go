package ignore

import (
	"github.com/bethropolis/ignorewalk/internal/utils"
)

// File names consulted in every directory.
const (
	GitignoreName = ".gitignore"
	DotIgnoreName = ".ignore"
)

// Source identifies which kind of rule decided a Match.
type Source int

const (
	SourceNone Source = iota
	SourceOverride
	SourceCustom
	SourceGitignore
	SourceDotIgnore
	SourceExclude
	SourceExplicit
	SourceGlobal
	SourceHidden
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceCustom:
		return "custom ignore file"
	case SourceGitignore:
		return ".gitignore"
	case SourceDotIgnore:
		return ".ignore"
	case SourceExclude:
		return ".git/info/exclude"
	case SourceExplicit:
		return "explicit ignore file"
	case SourceGlobal:
		return "global excludes"
	case SourceHidden:
		return "hidden rule"
	default:
		return "none"
	}
}

// Match is the decision for one path together with where it came from.
type Match struct {
	Verdict Verdict
	Source  Source
	Pattern *Pattern // nil for the hidden rule and unmatched overrides
}

// IsIgnore reports whether the path should be skipped.
func (m Match) IsIgnore() bool { return m.Verdict == Ignored }

// IsWhitelist reports whether a rule explicitly re-admitted the path.
func (m Match) IsWhitelist() bool { return m.Verdict == Whitelisted }

// layer holds the ignore files found in one directory.
type layer struct {
	dir       string
	inGit     bool // dir or one of its ancestors holds a .git entry
	custom    *Set
	gitignore *Set
	dotIgnore *Set
	exclude   *Set
}

// Stack is the chain of ignore layers from the walk root (or the filesystem
// root when parents are enabled) down to the directory currently being
// walked, plus the sources that apply everywhere.
type Stack struct {
	rootDir      string
	layers       []*layer
	parentLayers int
	baseInGit    bool

	hidden      bool
	dotIgnore   bool
	gitIgnore   bool
	gitExclude  bool
	parents     bool
	requireGit  bool
	customNames []string
	overrides   *Override
	explicit    []*Set
	global      *Set
	logger      utils.Logger
}

// Config holds the toggles and sources for a Stack
type Config struct {
	RootDir               string
	Hidden                bool
	DotIgnore             bool
	GitIgnore             bool
	GitExclude            bool
	Parents               bool
	RequireGit            bool
	CustomIgnoreFilenames []string
	Overrides             *Override
	Explicit              []*Set
	Global                *Set
	Logger                utils.Logger
}
