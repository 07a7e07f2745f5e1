package quote

import (
	"errors"
	"fmt"
)

// Kind classifies a quotation failure so the HTTP layer can map it to a status
type Kind int

const (
	KindExtraction Kind = iota + 1
	KindProvider
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindExtraction:
		return "extraction_failure"
	case KindProvider:
		return "provider_error"
	case KindValidation:
		return "validation_error"
	default:
		return "unknown"
	}
}

var (
	ErrNoPayload          = errors.New("no valid structured payload found")
	ErrMalformedItinerary = errors.New("payload does not have the itinerary shape")
	ErrUnknownIdentifier  = errors.New("itinerary references an identifier not present in servicios")
	ErrInvalidDay         = errors.New("itinerary day numbers must start at 1")
)

// Error is the single externally visible failure of a quotation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, or 0 when err is not a *Error
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}

func extractionError(op string, err error) *Error {
	return &Error{Kind: KindExtraction, Op: op, Err: err}
}

func providerError(op string, err error) *Error {
	return &Error{Kind: KindProvider, Op: op, Err: err}
}

// ValidationError wraps a malformed request body
func ValidationError(err error) *Error {
	return &Error{Kind: KindValidation, Op: "invalid request", Err: err}
}
