package service

import "errors"

var (
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrMissingCompany     = errors.New("company is required")
	ErrExternalAPIFailure = errors.New("external API failure")
	ErrNotApplicable      = errors.New("action not applicable to this document")
	ErrUnsavedDocument    = errors.New("document has unsaved changes")
)
