// Package setup provides initialization and configuration functions
package setup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bethropolis/ignorewalk/internal/ignore"
	"github.com/bethropolis/ignorewalk/internal/utils"
	"github.com/bethropolis/ignorewalk/internal/walker"
)

// InfoLogger wraps the Info method for status updates
type InfoLogger func(format string, args ...interface{})

// WalkerConfig holds all parameters needed to configure a directory walker
type WalkerConfig struct {
	Roots []string

	Hidden         bool
	Ignore         bool
	GitIgnore      bool
	GitGlobal      bool
	GitExclude     bool
	Parents        bool
	RequireGit     bool
	FollowLinks    bool
	SameFileSystem bool
	MaxDepth       int

	Globs           []string
	Extensions      []string
	IgnoreFileNames []string
	IgnoreFiles     []string

	Tracker *walker.SkippedTracker
	Logger  utils.Logger
}

// ConfigureWalker builds a walker.Builder from the config. Override globs and
// extensions resolve against each root in turn; an invalid glob or an
// unreadable ignore file is an error, while malformed lines inside an
// ignore file are only reported through the logger.
func ConfigureWalker(cfg WalkerConfig, infoLog InfoLogger) (walker.Builder, error) {
	if len(cfg.Roots) == 0 {
		return walker.Builder{}, errors.New("setup: no root to walk")
	}
	log := utils.OrNoop(cfg.Logger)

	b := walker.NewBuilder(cfg.Roots[0])
	for _, root := range cfg.Roots[1:] {
		b = b.Add(root)
	}

	opts := []walker.Option{
		walker.WithLogger(log),
		walker.WithHidden(cfg.Hidden),
		walker.WithIgnore(cfg.Ignore),
		walker.WithGitIgnore(cfg.GitIgnore),
		walker.WithGitGlobal(cfg.GitGlobal),
		walker.WithGitExclude(cfg.GitExclude),
		walker.WithParents(cfg.Parents),
		walker.WithRequireGit(cfg.RequireGit),
		walker.WithFollowLinks(cfg.FollowLinks),
		walker.WithSameFileSystem(cfg.SameFileSystem),
		walker.WithMaxDepth(cfg.MaxDepth),
	}

	if cfg.Hidden {
		infoLog("Ignoring hidden files/directories (starting with '.').")
	} else {
		infoLog("Including hidden files/directories.")
	}

	for _, name := range cfg.IgnoreFileNames {
		if name = strings.TrimSpace(name); name != "" {
			opts = append(opts, walker.WithCustomIgnoreFilename(name))
		}
	}
	if len(cfg.IgnoreFileNames) > 0 {
		infoLog("Reading extra ignore files named: %s", strings.Join(cfg.IgnoreFileNames, ", "))
	}

	overrides, err := buildOverrides(cfg.Roots[0], cfg.Globs, cfg.Extensions)
	if err != nil {
		return walker.Builder{}, err
	}
	if !overrides.IsEmpty() {
		opts = append(opts, walker.WithOverrides(overrides))
	}
	if len(cfg.Extensions) > 0 {
		infoLog("Filtering enabled. Only including extensions: .%s", strings.Join(cfg.Extensions, ", ."))
	}

	if cfg.Tracker != nil {
		opts = append(opts, walker.WithSkipHandler(cfg.Tracker.Handler()))
	}

	b = b.With(opts...)

	for _, path := range cfg.IgnoreFiles {
		next, err := b.AddIgnore(path)
		var pe *ignore.PatternError
		switch {
		case err == nil:
		case errors.As(err, &pe):
			log.Warn("Ignore file %s has invalid lines: %v", path, err)
		default:
			return walker.Builder{}, fmt.Errorf("setup: loading ignore file: %w", err)
		}
		b = next
		infoLog("Using ignore file: %s", path)
	}

	return b, nil
}

// buildOverrides compiles the user's globs followed by one whitelist glob
// per extension.
func buildOverrides(root string, globs, extensions []string) (*ignore.Override, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("setup: resolving %s: %w", root, err)
	}

	ob := ignore.NewOverrideBuilder(abs)
	for _, glob := range globs {
		if err := ob.Add(glob); err != nil {
			return nil, fmt.Errorf("setup: override glob: %w", err)
		}
	}
	for _, ext := range extensions {
		if err := ob.Add("*." + ext); err != nil {
			return nil, fmt.Errorf("setup: extension %q: %w", ext, err)
		}
	}
	return ob.Build()
}
