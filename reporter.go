package contentd

import (
	"context"
	"errors"
	"log/slog"
)

// Operation names used in Events.
const (
	OpDownload   = "download"
	OpAttachment = "attachment"
	OpUpload     = "upload"
)

// Event describes the outcome of one Service call.
type Event struct {
	Op      string
	Value   string
	Name    string
	Kind    TargetKind
	Bytes   int
	Files   []string
	Skipped []Skip
	Err     error
}

// Reporter receives every Service outcome, including the internal failure
// category that never reaches the client. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(ctx context.Context, e Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, e Event)

func (f ReporterFunc) Report(ctx context.Context, e Event) {
	f(ctx, e)
}

// NopReporter discards all events.
var NopReporter Reporter = ReporterFunc(func(context.Context, Event) {})

// SlogReporter writes events as structured log records.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter creates a SlogReporter. A nil logger uses slog.Default()
// at report time.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	return &SlogReporter{logger: logger}
}

func (r *SlogReporter) Report(ctx context.Context, e Event) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"op", e.Op, "value", e.Value}
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if e.Name != "" {
		attrs = append(attrs, "name", e.Name, "kind", e.Kind.String())
	}

	for _, s := range e.Skipped {
		logger.DebugContext(ctx, "skipped directory entry", append(attrs, "entry", s.Name, "reason", Reason(s.Err), "err", s.Err)...)
	}

	if e.Err != nil {
		level := slog.LevelWarn
		if errors.Is(e.Err, ErrNotFound) || errors.Is(e.Err, ErrOutsideRoot) {
			level = slog.LevelInfo
		}
		logger.Log(ctx, level, "request failed", append(attrs, "reason", Reason(e.Err), "err", e.Err)...)
		return
	}

	attrs = append(attrs, "bytes", e.Bytes)
	if e.Kind == KindDirectory {
		attrs = append(attrs, "files", len(e.Files), "skipped", len(e.Skipped))
	}
	logger.DebugContext(ctx, "request served", attrs...)
}

// requestIDKey is the context key for the per-request identifier.
type requestIDKey struct{}

// WithRequestID returns a new context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the identifier stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
