package booking

import (
	"fmt"

	"servisync/models"
)

// StoreError carries an operation outcome the gateway can surface to the
// user without string matching.
type StoreError struct {
	Code    string
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(id string) error {
	return &StoreError{
		Code:    "bookingNotFound",
		Message: fmt.Sprintf("no booking with id %q", id),
	}
}

func NewAlreadyReviewedError(id string) error {
	return &StoreError{
		Code:    "alreadyReviewed",
		Message: fmt.Sprintf("booking %q already has a review", id),
	}
}

func NewTerminalStateError(id string, status models.Status) error {
	return &StoreError{
		Code:    "terminalState",
		Message: fmt.Sprintf("booking %q is already %s and cannot be canceled", id, status),
	}
}

func NewStoreClosedError() error {
	return &StoreError{
		Code:    "storeClosed",
		Message: "booking store has been torn down",
	}
}
