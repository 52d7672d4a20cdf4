package history

import (
	"context"
	"encoding/json"
	"time"
)

// EventType defines the kind of launch event.
type EventType string

const (
	EventStart EventType = "start" // child spawned
	EventExit  EventType = "exit"  // child waited for, or spawn failed
)

// Record describes one wrapper invocation. Fields that are not known yet
// for a start event stay at their zero value.
type Record struct {
	Token     string    `json:"token"`
	Command   string    `json:"command"`
	Args      []string  `json:"args"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Outcome   string    `json:"outcome"` // exited, signaled, unknown, spawn_error, wait_error
	Code      int       `json:"code"`
	Signal    int       `json:"signal"`
	ExitCode  int       `json:"exit_code"` // what the wrapper itself exits with
	Error     string    `json:"error,omitempty"`
}

// ArgsJSON encodes Args as a JSON array for text columns.
func (r Record) ArgsJSON() string {
	if r.Args == nil {
		return "[]"
	}
	b, err := json.Marshal(r.Args)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Duration is EndedAt-StartedAt, or zero when either is unset.
func (r Record) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// NullableError returns nil for an empty Error so SQL sinks store NULL.
func (r Record) NullableError() any {
	if r.Error == "" {
		return nil
	}
	return r.Error
}

// Event represents a launch event to be exported to external systems.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for history events.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
