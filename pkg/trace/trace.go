// Package trace carries structured events out of compilation and import
// without tying those packages to a logger. The default emitter discards
// everything, keeping compilers pure.
package trace

import (
	"context"
	"log/slog"
	"sync"
)

// Event kinds emitted by the compilers and the orchestrator.
const (
	KindFallbackForm   = "fallback_form"
	KindUnknownType    = "unknown_type"
	KindReclassified   = "reclassified"
	KindTemplateError  = "template_error"
	KindSanitized      = "sanitized"
	KindFieldCompiled  = "field_compiled"
	KindStateChanged   = "state_changed"
	KindDuplicateFound = "duplicate_found"
	KindLinked         = "linked"
	KindFailed         = "failed"
)

// Event is a single trace record.
type Event struct {
	Stage  string
	Kind   string
	FormID string
	Field  string
	Detail string
}

// Emitter receives events.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, event Event)

func (f EmitterFunc) Emit(ctx context.Context, event Event) {
	if f != nil {
		f(ctx, event)
	}
}

type nop struct{}

func (nop) Emit(context.Context, Event) {}

// Nop discards events.
var Nop Emitter = nop{}

// OrNop returns e, or Nop when e is nil.
func OrNop(e Emitter) Emitter {
	if e == nil {
		return Nop
	}
	return e
}

// Recorder keeps every event in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []string {
	events := r.Events()
	kinds := make([]string, 0, len(events))
	for _, event := range events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

// Has reports whether an event of the given kind was recorded.
func (r *Recorder) Has(kind string) bool {
	for _, event := range r.Events() {
		if event.Kind == kind {
			return true
		}
	}
	return false
}

// SlogEmitter writes events as slog records. Failures log at warn level,
// field-level chatter at debug, everything else at info.
type SlogEmitter struct {
	logger *slog.Logger
}

// NewSlogEmitter wraps logger; a nil logger uses slog.Default().
func NewSlogEmitter(logger *slog.Logger) *SlogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEmitter{logger: logger}
}

func (s *SlogEmitter) Emit(ctx context.Context, event Event) {
	attrs := []slog.Attr{
		slog.String("stage", event.Stage),
		slog.String("kind", event.Kind),
	}
	if event.FormID != "" {
		attrs = append(attrs, slog.String("form_id", event.FormID))
	}
	if event.Field != "" {
		attrs = append(attrs, slog.String("field", event.Field))
	}
	if event.Detail != "" {
		attrs = append(attrs, slog.String("detail", event.Detail))
	}
	s.logger.LogAttrs(ctx, levelFor(event.Kind), "formimport event", attrs...)
}

func levelFor(kind string) slog.Level {
	switch kind {
	case KindFailed, KindTemplateError:
		return slog.LevelWarn
	case KindFieldCompiled, KindStateChanged:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
