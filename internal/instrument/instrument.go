package instrument

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourism-backend/internal/logger"
)

// Context keys
type ctxKey int

const (
	traceIDKey ctxKey = iota
	parentSpanIDKey
	instrumenterKey
)

// Instrumenter interface defines the tracing API.
type Instrumenter interface {
	StartSpan(ctx context.Context, source, component, action string) (context.Context, Span)
}

// Span interface represents a timed operation span.
type Span interface {
	End()
	SetStatus(status string)
	SetMetadata(key string, value any)
	SetEntity(entity, recordID string)
	TraceID() string
	SpanID() string
}

// newUUID generates a new UUID v4 string.
func newUUID() string {
	return uuid.New().String()
}

// WithTraceID sets the trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithParentSpanID sets the parent span ID in the context.
func WithParentSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, parentSpanIDKey, spanID)
}

func getParentSpanID(ctx context.Context) string {
	if v, ok := ctx.Value(parentSpanIDKey).(string); ok {
		return v
	}
	return ""
}

// WithInstrumenter sets the instrumenter in the context.
func WithInstrumenter(ctx context.Context, inst Instrumenter) context.Context {
	return context.WithValue(ctx, instrumenterKey, inst)
}

// GetInstrumenter returns the instrumenter from the context,
// or a NoopInstrumenter if none is set.
func GetInstrumenter(ctx context.Context) Instrumenter {
	if v, ok := ctx.Value(instrumenterKey).(Instrumenter); ok {
		return v
	}
	return &NoopInstrumenter{}
}

// MetricsInstrumenter records span durations in Prometheus and logs
// finished spans at debug level.
type MetricsInstrumenter struct{}

// NewInstrumenter creates a MetricsInstrumenter.
func NewInstrumenter() *MetricsInstrumenter {
	return &MetricsInstrumenter{}
}

// StartSpan creates a new span and returns the updated context.
func (i *MetricsInstrumenter) StartSpan(ctx context.Context, source, component, action string) (context.Context, Span) {
	spanID := newUUID()
	span := &SpanImpl{
		traceID:      GetTraceID(ctx),
		spanID:       spanID,
		parentSpanID: getParentSpanID(ctx),
		source:       source,
		component:    component,
		action:       action,
		status:       "ok",
		startTime:    time.Now(),
		metadata:     make(map[string]any),
		log:          logger.FromContext(ctx),
	}

	// Child spans reference this span as parent
	ctx = WithParentSpanID(ctx, spanID)
	return ctx, span
}

// SpanImpl is a span that reports to Prometheus when it ends.
// A span is owned by one goroutine.
type SpanImpl struct {
	traceID      string
	spanID       string
	parentSpanID string
	source       string
	component    string
	action       string
	status       string
	entity       string
	recordID     string
	startTime    time.Time
	metadata     map[string]any
	log          *zap.Logger
	ended        bool
}

func (s *SpanImpl) End() {
	if s.ended {
		return
	}
	s.ended = true
	elapsed := time.Since(s.startTime)
	SpanDuration.WithLabelValues(s.source, s.component, s.action, s.status).Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("trace_id", s.traceID),
		zap.String("span_id", s.spanID),
		zap.String("parent_span_id", s.parentSpanID),
		zap.String("action", s.action),
		zap.String("status", s.status),
		zap.Duration("duration", elapsed),
	}
	if s.entity != "" {
		fields = append(fields, zap.String("entity", s.entity), zap.String("record_id", s.recordID))
	}
	for k, v := range s.metadata {
		fields = append(fields, zap.Any(k, v))
	}
	s.log.Debug("span", fields...)
}

func (s *SpanImpl) SetStatus(status string)           { s.status = status }
func (s *SpanImpl) SetMetadata(key string, value any) { s.metadata[key] = value }
func (s *SpanImpl) SetEntity(entity, recordID string) { s.entity, s.recordID = entity, recordID }
func (s *SpanImpl) TraceID() string                   { return s.traceID }
func (s *SpanImpl) SpanID() string                    { return s.spanID }
