package draw

import (
	"errors"
	"fmt"
)

// Sentinel errors for the draw service layer.
var (
	ErrNotFound              = errors.New("not found")
	ErrWinnerAlreadySelected = errors.New("winner already selected")
	ErrNoEntries             = errors.New("no entries for this door")
	ErrNoLeads               = errors.New("no leads to choose from")
	ErrLeadNotInCampaign     = errors.New("lead does not belong to this campaign")
	ErrNotLandingCampaign    = errors.New("campaign does not use the landing format")
	ErrInvalidInput          = errors.New("invalid input")
)

// ValidationError reports a rejected registration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
