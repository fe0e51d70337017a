package ingest

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ingestion layer.
var (
	// ErrInvalidEvent is wrapped by every client-side payload error.
	ErrInvalidEvent = errors.New("invalid event")

	ErrUnknownEventType = fmt.Errorf("%w: unknown event type", ErrInvalidEvent)

	// ErrUnknownCampaign is returned when the store rejects an event whose
	// campaign, door or session reference does not exist.
	ErrUnknownCampaign = fmt.Errorf("%w: unknown campaign or door", ErrInvalidEvent)

	// ErrRejectedValue is returned when the store rejects a field value.
	ErrRejectedValue = fmt.Errorf("%w: value rejected by store", ErrInvalidEvent)

	// ErrUnavailable is returned while the store circuit breaker is open.
	ErrUnavailable = errors.New("tracking store unavailable")
)

// ValidationError reports a missing or malformed payload field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with ErrInvalidEvent.
func (e *ValidationError) Unwrap() error { return ErrInvalidEvent }
