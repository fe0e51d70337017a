package leads

import "errors"

// Sentinel errors for the leads service layer.
var (
	ErrNotFound = errors.New("campaign not found")
)
