// Package requestcontext carries per-request values set by middleware.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	clientKey      struct{}
	requestTimeKey struct{}
)

type clientMetadata struct {
	ip        string
	userAgent string
}

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID retrieves the request ID from the context, or "" when unset.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithClientMetadata stores the resolved client IP and User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientMetadata{ip: ip, userAgent: userAgent})
}

func ClientIP(ctx context.Context) string {
	if md, ok := ctx.Value(clientKey{}).(clientMetadata); ok {
		return md.ip
	}
	return ""
}

func UserAgent(ctx context.Context) string {
	if md, ok := ctx.Value(clientKey{}).(clientMetadata); ok {
		return md.userAgent
	}
	return ""
}

// WithTime pins the request-scoped "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the request-scoped time, or time.Now() outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
