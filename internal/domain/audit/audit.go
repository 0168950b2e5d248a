// Package audit defines the best-effort audit trail interface.
// Recording is fire-and-forget and must never block or fail a report flow.
package audit

import (
	"context"
)

// Actions recorded by the reporting service.
const (
	ActionGenerate = "generate"
	ActionExport   = "export"
)

// Entry is one audit record.
type Entry struct {
	Action  string
	Module  string
	UserID  string
	Details map[string]any
}

// Recorder persists audit entries best-effort.
//
// Implementations must return quickly (spawning their own goroutine if the
// write is slow) and swallow failures after logging them.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Nop is a Recorder that discards everything. Used in tests.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) {}
