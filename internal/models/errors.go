package models

import (
	"errors"
)

var (
	ErrReviewNotFound  = errors.New("models: review not found")
	ErrAlreadyReviewed = errors.New("models: user already reviewed this place")
	ErrPlaceNotFound   = errors.New("models: place not found")
	ErrUserNotFound    = errors.New("models: user not found")
)

// ValidationError carries a client-facing message for rejected input. It is
// always detected before any mutation, so handlers map it straight to a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
