package history

import (
	"context"
	"log/slog"
	"time"
)

// Recorder sends events to a Sink with a per-send timeout. Failures are
// logged and otherwise ignored: history must never change how the wrapper
// exits. A nil *Recorder is valid and does nothing.
type Recorder struct {
	sink    Sink
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewRecorder(sink Sink, timeout time.Duration, logger *slog.Logger) *Recorder {
	if sink == nil {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{sink: sink, timeout: timeout, logger: logger, now: time.Now}
}

func (r *Recorder) Record(t EventType, rec Record) {
	if r == nil {
		return
	}
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	e := Event{Type: t, OccurredAt: r.now().UTC(), Record: rec}
	if err := r.sink.Send(ctx, e); err != nil {
		r.logger.Warn("history send failed", "event", string(t), "token", rec.Token, "error", err)
	}
}

func (r *Recorder) Close() {
	if r == nil {
		return
	}
	if err := r.sink.Close(); err != nil {
		r.logger.Warn("history close failed", "error", err)
	}
}
