// Package ignore provides gitignore rule evaluation for directory walks
//
// Patterns are compiled once (Compile, Builder, ParseFile) into read-only
// Sets that answer Whitelisted, Ignored or None with last-match-wins
// semantics. A Stack layers the Sets found in each directory of a walk and
// resolves precedence between them, the caller's Override globs, the global
// git excludes and the hidden-file rule.
package ignore

// NewFromConfig creates a Stack from a Config struct
func NewFromConfig(cfg Config) (*Stack, error) {
	options := []Option{
		WithHidden(cfg.Hidden),
		WithDotIgnore(cfg.DotIgnore),
		WithGitIgnore(cfg.GitIgnore),
		WithGitExclude(cfg.GitExclude),
		WithParents(cfg.Parents),
		WithRequireGit(cfg.RequireGit),
	}

	if len(cfg.CustomIgnoreFilenames) > 0 {
		options = append(options, WithCustomIgnoreFilenames(cfg.CustomIgnoreFilenames))
	}
	if !cfg.Overrides.IsEmpty() {
		options = append(options, WithOverrides(cfg.Overrides))
	}
	if len(cfg.Explicit) > 0 {
		options = append(options, WithExplicit(cfg.Explicit))
	}
	if cfg.Global != nil {
		options = append(options, WithGlobal(cfg.Global))
	}
	if cfg.Logger != nil {
		options = append(options, WithLogger(cfg.Logger))
	}

	return New(cfg.RootDir, options...)
}
