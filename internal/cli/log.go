// Package cli implements the corvoid command-line interface.
//
// # Commands
//
//   - tree: print the resolved dependency tree with sizes and licenses
//   - classpath: print the classpath of the project
//   - deps: download every artifact on the classpath
//   - outdated: list dependencies with newer stable releases
//   - latest: print the newest stable release of a coordinate
//   - modules: list the modules of the local build
//   - cache: inspect or clear the local repository
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and passed down to the cache, the
// workspace and the resolver.
package cli

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ato/corvoid/pkg/observability"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// the elapsed duration. It is meant for a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level, e.g. "Fetched 42 artifacts (1.234s)".
func (p *progress) done(format string, args ...any) {
	p.logger.Infof(format+" (%s)", append(args, p.elapsed())...)
}

// debug is done at debug level.
func (p *progress) debug(format string, args ...any) {
	p.logger.Debugf(format+" (%s)", append(args, p.elapsed())...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// downloadCounter is a cache hook that tallies transfers for the summary
// lines of deps and tree.
type downloadCounter struct {
	observability.NoopCacheHooks
	count  atomic.Int64
	bytes  atomic.Int64
	failed atomic.Int64
}

func (d *downloadCounter) OnDownload(_ context.Context, _ string, n int64, _ time.Duration, err error) {
	if err != nil {
		d.failed.Add(1)
		return
	}
	d.count.Add(1)
	d.bytes.Add(n)
}

func (d *downloadCounter) snapshot() (count, bytes int64) {
	return d.count.Load(), d.bytes.Load()
}
