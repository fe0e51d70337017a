package report

import "errors"

// Sentinel errors for the report service layer.
var (
	ErrNotFound      = errors.New("campaign not found")
	ErrInvalidPeriod = errors.New("invalid period")
)
