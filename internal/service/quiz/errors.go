package quiz

import (
	"errors"
	"fmt"
)

// Sentinel errors for the quiz service layer.
var (
	ErrNotFound     = errors.New("door not found")
	ErrInvalidInput = errors.New("invalid question")
	ErrNoGenerator  = errors.New("question generation is not configured")
)

// ValidationError reports which question was rejected and why.
type ValidationError struct {
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Index+1, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
