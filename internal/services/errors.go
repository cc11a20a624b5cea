package services

import (
	"errors"
	"fmt"
)

// ErrProposalValueRequired is returned when a transition targets a stage
// at or after the proposal milestone and no positive proposal value is on
// record. The caller must capture a value and re-submit the whole move;
// nothing is persisted in the meantime.
var ErrProposalValueRequired = errors.New("proposal value required before entering a proposal stage")

// ValidationError marks input the user can fix locally (blocking prompt,
// not a failure toast).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
