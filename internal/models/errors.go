package models

import (
	"errors"
	"fmt"
)

// Store error taxonomy. Every tracker mutation returns one of these as a
// typed result; a failure on one meeting never affects another.
var (
	ErrNotFound              = errors.New("tracker not found")
	ErrAlreadyExists         = errors.New("tracker already exists")
	ErrInvalidTracker        = errors.New("invalid tracker parameters")
	ErrInvalidRace           = errors.New("invalid race result")
	ErrInvalidMargin         = errors.New("margin outside allowed range")
	ErrInsufficientPriceData = errors.New("insufficient price data")
)

// StoreError wraps a taxonomy sentinel with the meeting key and detail.
type StoreError struct {
	Meeting string
	Kind    error
	Detail  string
}

func (e *StoreError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Meeting, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Meeting, e.Kind, e.Detail)
}

// Unwrap exposes the sentinel so callers can match with errors.Is.
func (e *StoreError) Unwrap() error {
	return e.Kind
}

// NewStoreError builds a StoreError for a meeting.
func NewStoreError(meeting string, kind error, format string, args ...interface{}) *StoreError {
	return &StoreError{
		Meeting: meeting,
		Kind:    kind,
		Detail:  fmt.Sprintf(format, args...),
	}
}
