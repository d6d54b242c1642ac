package service

import (
	"errors"
	"fmt"
)

// ErrorCode is the closed set of business rejection codes the core
// returns. Transport layers map them to response statuses; callers match
// them with errors.Is against the exported sentinels.
type ErrorCode string

const (
	CodeValidation                ErrorCode = "validation"
	CodeNotFound                  ErrorCode = "not_found"
	CodeSlotConflict              ErrorCode = "slot_conflict"
	CodeStateConflict             ErrorCode = "state_conflict"
	CodeInvalidTransition         ErrorCode = "invalid_transition"
	CodeCancellationWindowExpired ErrorCode = "cancellation_window_expired"
	CodeActorNotAllowed           ErrorCode = "actor_not_allowed"
	CodeUnpaidReservationExists   ErrorCode = "unpaid_reservation_exists"
	CodeNotPayable                ErrorCode = "not_payable"
	CodeAlreadyPaid               ErrorCode = "already_paid"
	CodeInvalidState              ErrorCode = "invalid_state"
	CodeAlreadyRated              ErrorCode = "already_rated"
)

// BusinessError is a structured rejection: which rule fired and what state
// the entity was in, so the caller can render a precise message instead of
// a generic failure.
type BusinessError struct {
	Code  ErrorCode
	Rule  string // human-readable description of the violated rule
	State string // current entity state when relevant
}

func (e *BusinessError) Error() string {
	msg := string(e.Code)
	if e.Rule != "" {
		msg += ": " + e.Rule
	}
	if e.State != "" {
		msg += fmt.Sprintf(" (current state: %s)", e.State)
	}
	return msg
}

// Is matches by code so errors.Is(err, ErrSlotConflict) works regardless
// of the rule detail carried by the concrete error.
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is matching.
var (
	ErrNotFound                  = &BusinessError{Code: CodeNotFound}
	ErrSlotConflict              = &BusinessError{Code: CodeSlotConflict}
	ErrStateConflict             = &BusinessError{Code: CodeStateConflict}
	ErrInvalidTransition         = &BusinessError{Code: CodeInvalidTransition}
	ErrCancellationWindowExpired = &BusinessError{Code: CodeCancellationWindowExpired}
	ErrActorNotAllowed           = &BusinessError{Code: CodeActorNotAllowed}
	ErrUnpaidReservationExists   = &BusinessError{Code: CodeUnpaidReservationExists}
	ErrNotPayable                = &BusinessError{Code: CodeNotPayable}
	ErrAlreadyPaid               = &BusinessError{Code: CodeAlreadyPaid}
	ErrInvalidState              = &BusinessError{Code: CodeInvalidState}
	ErrAlreadyRated              = &BusinessError{Code: CodeAlreadyRated}
)

func validationErr(rule string) *BusinessError {
	return &BusinessError{Code: CodeValidation, Rule: rule}
}

func guardErr(code ErrorCode, rule, state string) *BusinessError {
	return &BusinessError{Code: code, Rule: rule, State: state}
}

// AsBusinessError extracts the structured error when err carries one.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
