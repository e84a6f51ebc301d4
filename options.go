package unildd

import (
	"runtime"

	"github.com/rs/zerolog"

	"github.com/simonhull/unildd/internal/logging"
)

// DefaultMaxDepth is the container nesting limit applied when
// WithMaxDepth is not given.
const DefaultMaxDepth = 16

// Option configures a read.
//
// Options use the functional options pattern:
//
//	objs, err := unildd.Read("libfoo.a", data,
//	    unildd.WithDebug(true),
//	    unildd.WithMaxDepth(4),
//	)
type Option func(*readOptions)

type readOptions struct {
	logger      zerolog.Logger
	maxDepth    int
	concurrency int // ReadMany and ReadFiles only
}

func defaultOptions() *readOptions {
	return &readOptions{
		logger:      logging.Nop(),
		maxDepth:    DefaultMaxDepth,
		concurrency: runtime.NumCPU(),
	}
}

func applyOptions(opts []Option) *readOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDebug switches diagnostics to a debug-level console logger on
// stderr. It never changes the returned data.
func WithDebug(enabled bool) Option {
	return func(o *readOptions) {
		if enabled {
			o.logger = logging.NewWithComponent(logging.DefaultConfig(), "unildd")
		}
	}
}

// WithLogger sends diagnostics to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *readOptions) {
		o.logger = l
	}
}

// WithMaxDepth bounds container nesting. Objects nested deeper than n
// containers are reported as corrupt. Negative values are ignored.
func WithMaxDepth(n int) Option {
	return func(o *readOptions) {
		if n >= 0 {
			o.maxDepth = n
		}
	}
}

// WithConcurrency sets how many inputs ReadMany and ReadFiles process at
// once. Values below 1 select runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(o *readOptions) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		o.concurrency = n
	}
}
