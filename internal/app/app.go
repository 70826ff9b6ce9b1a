// Package app wires configuration, walker and output together
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/bethropolis/ignorewalk/internal/config"
	"github.com/bethropolis/ignorewalk/internal/dump"
	"github.com/bethropolis/ignorewalk/internal/logger"
	"github.com/bethropolis/ignorewalk/internal/printer"
	"github.com/bethropolis/ignorewalk/internal/setup"
	"github.com/bethropolis/ignorewalk/internal/summary"
	"github.com/bethropolis/ignorewalk/internal/walker"
)

// App encapsulates the main application functionality
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	Output io.Writer
	Errors io.Writer // skipped-item listing
	closer io.Closer
}

// New creates a new App writing to stdout, or to cfg.OutputFile when set.
func New(cfg *config.Config) (*App, error) {
	// Configure color globally
	color.NoColor = !cfg.UseColors

	a := &App{
		cfg:    cfg,
		log:    logger.New(os.Stderr, cfg.LogLevel, cfg.UseColors),
		Output: os.Stdout,
		Errors: os.Stderr,
	}

	if cfg.OutputFile != "" {
		file, err := os.Create(cfg.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("app: failed to create output file: %w", err)
		}
		a.Output = file
		a.closer = file
	}
	return a, nil
}

// WithLogger replaces the logger, mainly for tests.
func (a *App) WithLogger(log *logger.Logger) *App {
	a.log = log
	return a
}

// Close releases the output file, if one was opened.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Run walks every root and prints what survives the ignore rules. Entry
// errors are logged and counted; Run only fails on configuration errors
// and when the timeout stops the walk.
func (a *App) Run(ctx context.Context) error {
	startTime := time.Now()

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	// Helper for info messages, suppressed by quiet flag
	infoLog := func(format string, args ...interface{}) {
		if !a.cfg.Quiet {
			a.log.Info(format, args...)
		}
	}

	if a.cfg.ConfigFile != "" {
		a.log.Debug("Settings read from %s", a.cfg.ConfigFile)
	}
	a.log.Debug("Roots: %v", a.cfg.Roots)
	a.log.Debug("Walk settings: hidden=%v ignore=%v gitIgnore=%v gitGlobal=%v gitExclude=%v parents=%v requireGit=%v",
		a.cfg.Hidden, a.cfg.Ignore, a.cfg.GitIgnore, a.cfg.GitGlobal, a.cfg.GitExclude, a.cfg.Parents, a.cfg.RequireGit)
	a.log.Debug("Traversal: follow=%v sameFileSystem=%v maxDepth=%d", a.cfg.FollowLinks, a.cfg.SameFileSystem, a.cfg.MaxDepth)

	var tracker *walker.SkippedTracker
	if a.cfg.ShowSkipped {
		tracker = walker.NewSkippedTracker(100)
	}

	builder, err := setup.ConfigureWalker(setup.WalkerConfig{
		Roots:           a.cfg.Roots,
		Hidden:          a.cfg.Hidden,
		Ignore:          a.cfg.Ignore,
		GitIgnore:       a.cfg.GitIgnore,
		GitGlobal:       a.cfg.GitGlobal,
		GitExclude:      a.cfg.GitExclude,
		Parents:         a.cfg.Parents,
		RequireGit:      a.cfg.RequireGit,
		FollowLinks:     a.cfg.FollowLinks,
		SameFileSystem:  a.cfg.SameFileSystem,
		MaxDepth:        a.cfg.MaxDepth,
		Globs:           a.cfg.Globs,
		Extensions:      a.cfg.Extensions,
		IgnoreFileNames: a.cfg.IgnoreFileNames,
		IgnoreFiles:     a.cfg.IgnoreFiles,
		Tracker:         tracker,
		Logger:          a.log,
	}, infoLog)
	if err != nil {
		return err
	}

	p := printer.New().WithOutput(a.Output).WithColors(a.cfg.UseColors)
	if a.cfg.JSONOutput {
		a.log.Debug("JSON output mode enabled")
		p.WithJSON(true).WithColors(false)
	} else if a.cfg.MarkdownOutput {
		a.log.Debug("Markdown output mode enabled")
		p.WithMarkdown(true).WithColors(false)
	}

	var stats summary.Stats
	var files []*walker.DirEntry

	for _, root := range a.cfg.Roots {
		infoLog("Walking: %s", root)
	}
	for e, err := range builder.Build().All() {
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			stats.Errors++
			switch {
			case errors.Is(err, walker.ErrLoop):
				stats.Loops++
			case walker.IsNotFound(err):
				stats.NotFound++
			}
			a.log.Warn("%v", err)
			continue
		}

		stats.Entries++
		switch {
		case a.cfg.Dump:
			if e.FileType() == walker.TypeFile {
				files = append(files, e)
			}
		case a.cfg.FilesOnly && e.IsDir():
		default:
			p.PrintEntry(e)
		}
	}

	if a.cfg.Dump && ctx.Err() == nil {
		if a.cfg.Concurrent {
			infoLog("Using concurrent reads with %d workers.", a.cfg.MaxWorkers)
		}
		opts := []dump.Option{
			dump.WithLogger(a.log),
			dump.WithConcurrency(a.cfg.Concurrent),
			dump.WithMaxWorkers(a.cfg.MaxWorkers),
			dump.WithTracker(tracker),
		}
		if a.cfg.MaxFileSizeMB > 0 {
			opts = append(opts, dump.WithMaxFileSize(a.cfg.MaxFileSizeMB*1024*1024))
			infoLog("Ignoring files larger than %d MB.", a.cfg.MaxFileSizeMB)
		}

		printFunc := func(path string, content []byte, err error) error {
			if err != nil {
				a.log.Warn("Skipping file '%s' due to error: %v", path, err)
				return nil
			}
			p.PrintFile(path, content)
			return nil
		}
		if err := dump.Files(ctx, files, printFunc, opts...); err != nil {
			a.log.Debug("dump stopped: %v", err)
		}
	}

	p.Finalize()

	stats.Printed = p.GetCount()
	stats.Duration = time.Since(startTime)
	summary.DisplayResults(a.log, stats, a.cfg.Quiet)

	if tracker != nil {
		summary.DisplaySkippedItems(a.log, tracker.Items(), a.Errors, a.cfg.Quiet)
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timeout of %v reached: %w", a.cfg.Timeout, err)
		}
		return err
	}
	return nil
}
