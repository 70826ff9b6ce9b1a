// Package dump reads the contents of the files a walk yields
package dump

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/bethropolis/ignorewalk/internal/walker"
)

// FileFunc receives one file. content is nil when err is set.
type FileFunc func(path string, content []byte, err error) error

type result struct {
	content []byte
	err     error
	skipped bool
}

// Files reads the given entries and hands them to fn in the order they
// were given, whether or not they were read concurrently. Files that are
// not regular are skipped silently. Errors returned by fn are logged; the
// only error Files returns is the context's.
func Files(ctx context.Context, entries []*walker.DirEntry, fn FileFunc, opts ...Option) error {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	limit := 1
	if options.Concurrent {
		limit = options.MaxWorkers
	}
	options.Logger.Debug("dump.Files: %d files, %d workers", len(entries), limit)

	results := make([]result, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = readFile(e.Path(), options)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, e := range entries {
		r := results[i]
		if r.skipped {
			continue
		}
		if err := fn(e.Path(), r.content, r.err); err != nil {
			options.Logger.Error("dump.Files [%s]: callback returned error: %v", e.Path(), err)
		}
	}
	return nil
}

// readFile reads path, honouring the size limit.
func readFile(path string, options Options) result {
	track := func(reason walker.SkippedReason) {
		if options.Tracker != nil {
			options.Tracker.Track(path, reason, false)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		options.Logger.Error("readFile [%s]: failed to get file info: %v", path, err)
		track(walker.ReasonSkippedInfoError)
		return result{err: fmt.Errorf("failed to get file info: %w", err)}
	}
	if !info.Mode().IsRegular() {
		options.Logger.Debug("readFile [%s]: not a regular file", path)
		track(walker.ReasonSkippedNotRegular)
		return result{skipped: true}
	}
	if options.MaxFileSize > 0 && info.Size() > options.MaxFileSize {
		options.Logger.Debug("readFile [%s]: exceeds size limit (%d > %d bytes)",
			path, info.Size(), options.MaxFileSize)
		track(walker.ReasonSkippedSizeLimit)
		return result{err: fmt.Errorf("file size %d exceeds limit %d bytes", info.Size(), options.MaxFileSize)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		options.Logger.Error("readFile [%s]: failed to read file: %v", path, err)
		track(walker.ReasonSkippedReadError)
		return result{err: fmt.Errorf("failed to read file: %w", err)}
	}
	options.Logger.Debug("readFile [%s]: read %d bytes", path, len(content))
	return result{content: content}
}
