// Package tracer wraps span creation for calls to the text-generation provider.
//
// Code in the generation module depends on the small Tracer interface below rather
// than on OpenTelemetry directly. NoopTracer serves tests; OTelTracer serves
// production.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start opens a span named name and returns a context carrying it.
	//
	//   ctx, span := tr.Start(ctx, tracer.SpanGenerate,
	//       tracer.String(tracer.AttrModel, "gemini-1.5-flash"),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanGenerate = "generation.generate"
)

// Attribute keys.
const (
	AttrModel         = "generation.model"
	AttrMaxTokens     = "generation.max_tokens"
	AttrTemperature   = "generation.temperature"
	AttrPromptChars   = "generation.prompt_chars"
	AttrResponseChars = "generation.response_chars"
	AttrStatusCode    = "http.status_code"
	AttrErrorCategory = "error.category"
	AttrQueueWait     = "generation.queue_wait_ms"
)

// Event names.
const (
	EventSlotAcquired = "generation.slot_acquired"
)
