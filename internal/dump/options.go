package dump

import (
	"runtime"

	"github.com/bethropolis/ignorewalk/internal/utils"
	"github.com/bethropolis/ignorewalk/internal/walker"
)

// Options configures how file contents are read
type Options struct {
	Logger      utils.Logger
	Concurrent  bool
	MaxWorkers  int
	MaxFileSize int64 // bytes, 0 = no limit
	Tracker     *walker.SkippedTracker
}

func defaultOptions() Options {
	return Options{
		Logger:     utils.NoopLogger{},
		MaxWorkers: runtime.NumCPU(),
	}
}

// Option is a functional option for configuring Options
type Option func(*Options)

// WithLogger sets a custom logger
func WithLogger(logger utils.Logger) Option {
	return func(opts *Options) {
		opts.Logger = utils.OrNoop(logger)
	}
}

// WithConcurrency enables or disables concurrent reads
func WithConcurrency(enabled bool) Option {
	return func(opts *Options) {
		opts.Concurrent = enabled
	}
}

// WithMaxWorkers sets the maximum number of concurrent reads
func WithMaxWorkers(workers int) Option {
	return func(opts *Options) {
		if workers > 0 {
			opts.MaxWorkers = workers
		}
	}
}

// WithMaxFileSize sets the maximum file size to read in bytes
func WithMaxFileSize(maxBytes int64) Option {
	return func(opts *Options) {
		opts.MaxFileSize = maxBytes
	}
}

// WithTracker records files that are not read
func WithTracker(tracker *walker.SkippedTracker) Option {
	return func(opts *Options) {
		opts.Tracker = tracker
	}
}
