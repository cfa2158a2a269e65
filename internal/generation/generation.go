// Package generation talks to the external text-generation model.
//
// A Generator is built once at startup and shared by every request. Failures are
// reported as *Error with a normalized Category so callers never inspect provider
// specific messages.
package generation

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=generation.go -destination=mocks/generator_mock.go -package=mocks Generator

// Options are per-call sampling parameters.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Generator produces free text for a prompt. Implementations must be safe for
// concurrent use and must honour ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Category is the normalized failure taxonomy of a generation call.
type Category string

const (
	// CategoryTimeout means the provider did not answer in time.
	CategoryTimeout Category = "timeout"
	// CategoryAuthentication means the API key was rejected.
	CategoryAuthentication Category = "authentication"
	// CategoryRateLimited means the provider throttled the call.
	CategoryRateLimited Category = "rate_limited"
	// CategoryProviderOutage means the provider was unreachable or failing.
	CategoryProviderOutage Category = "provider_outage"
	// CategoryBadResponse means the provider answered with an unusable envelope.
	CategoryBadResponse Category = "bad_response"
	// CategoryInternal covers everything else, including a missing configuration.
	CategoryInternal Category = "internal"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("text generation is not configured")

// Error wraps a failed generation call.
type Error struct {
	Category   Category
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("generation [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("generation [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError builds a categorized generation error.
func NewError(category Category, message string, underlying error) *Error {
	return &Error{Category: category, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category of err, defaulting to CategoryInternal.
func CategoryOf(err error) Category {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Category
	}
	return CategoryInternal
}

// Transient reports whether err is the kind of failure that usually clears on its own.
// Nothing retries automatically; the flag only informs logs and health reporting.
func Transient(err error) bool {
	switch CategoryOf(err) {
	case CategoryTimeout, CategoryRateLimited, CategoryProviderOutage:
		return true
	default:
		return false
	}
}
