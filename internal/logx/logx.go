// Package logx is the structured logging sink for the geodynamic core.
// Kernels never log directly (see DESIGN.md). Buffer queues emissions
// for one batched flush; the step driver, the triangulator and the
// exporter write to Log directly and do not use it.
package logx

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the process-wide structured logger. Tests may swap its output
// via SetOutput.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

// SetOutput redirects Log, used by tests that want to assert on output.
func SetOutput(w zerolog.ConsoleWriter) {
	Log = zerolog.New(w).With().Timestamp().Logger()
}

// Buffer accumulates log events emitted during a step or a tile and
// flushes them as a single batch, so a busy parallel-for body never
// contends on the shared writer.
type Buffer struct {
	events []func()
}

// Add queues a log emission. The closure is invoked at Flush time.
func (b *Buffer) Add(fn func()) {
	b.events = append(b.events, fn)
}

// Flush runs every queued emission in order and clears the buffer.
func (b *Buffer) Flush() {
	for _, fn := range b.events {
		fn()
	}
	b.events = b.events[:0]
}

// Len reports the number of queued events.
func (b *Buffer) Len() int { return len(b.events) }
