// Package audit emits fire-and-forget structured log events to the log
// queue. Emission is an independent, best-effort output edge of every state
// transition in the loan pipeline: its failure never changes the outcome of
// the operation that emitted it.
package audit

import "context"

// Level classifies a log event.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Event is the log-queue wire message. Producers and the external log sink
// must stay in lockstep; there is no schema version field.
type Event struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Publisher emits audit events. Implementations are best-effort and must
// never block the caller on queue availability.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// Info emits an INFO event.
func Info(ctx context.Context, p Publisher, message string) {
	p.Emit(ctx, Event{Level: LevelInfo, Message: message})
}

// Error emits an ERROR event.
func Error(ctx context.Context, p Publisher, message string) {
	p.Emit(ctx, Event{Level: LevelError, Message: message})
}
