// Package cli implements the hyperscene command-line interface.
//
// Commands load one or more YAML models, build an editing session around
// them and either settle the layout headlessly (layout, render, stats) or
// keep it running for an interactive host (watch, serve). The CLI is built
// with cobra and logs through charmbracelet/log; --verbose switches to
// debug level, which includes per-pass reconciliation summaries.
//
// # Commands
//
//   - layout: settle a model's layout and cache the positions
//   - render: write the laid-out scene as DOT, SVG, PDF or PNG
//   - stats: print model statistics
//   - merge: merge several models into one file
//   - watch: live terminal view with layout and filter controls
//   - serve: live editing session over a JSON HTTP API
//   - cache: manage the position and render cache
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/hyperscene/config.toml, or the file
// named by --config. Flags override config values.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Laid out 42 nodes (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
