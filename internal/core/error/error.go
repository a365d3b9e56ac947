package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// UpstreamErrorMessage describes failures of the generative model provider.
	UpstreamErrorMessage = "upstream model request failed"
)

// Sentinel errors for the assistant core. Callers classify with errors.Is.
var (
	// ErrConfiguration means the upstream credential is missing. Fatal,
	// surfaced before any generation is attempted.
	ErrConfiguration = errors.New("missing generative model API key")

	// ErrUpstream covers provider rejections and connections dropped
	// mid-stream. Partial output already relayed is kept.
	ErrUpstream = errors.New("upstream generation failed")

	// ErrGenerationInFlight rejects a submission while another generation
	// is still streaming for the same session.
	ErrGenerationInFlight = errors.New("a generation is already in flight")

	// ErrUnauthenticated rejects submissions and bootstrap before the
	// access gate reports a signed-in user.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrEmptySubmission rejects a submission with neither text nor images.
	ErrEmptySubmission = errors.New("empty submission")

	// ErrPersistenceParse marks a corrupted durable log. Recovered by
	// substituting an empty sequence for that log only.
	ErrPersistenceParse = errors.New("corrupted durable log")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// WrapUpstream wraps a provider error with a consistent status and message.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, err),
		Status:  http.StatusBadGateway,
		Message: UpstreamErrorMessage,
	}
}
