package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/openai/openai-go/v2"
)

// ErrEmptyCompletion is returned when the provider answers without any choice.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// ProviderError reports a failed call to the completion service.
// Transient is true for causes worth retrying later: deadlines, network
// failures, rate limiting and 5xx answers.
type ProviderError struct {
	StatusCode int
	Transient  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion provider error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err carries a transient ProviderError.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

func classifyError(err error) *ProviderError {
	pe := &ProviderError{Err: err}

	var apiErr *openai.Error
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.StatusCode
		pe.Transient = isTransientStatus(apiErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		pe.Transient = true
	case errors.Is(err, context.Canceled):
		pe.Transient = false
	case errors.As(err, &netErr):
		pe.Transient = true
	}

	return pe
}

func isTransientStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusConflict,
		status == http.StatusTooManyRequests:
		return true
	case status >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}
