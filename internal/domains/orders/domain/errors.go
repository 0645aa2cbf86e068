package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrInvalidStore      = errors.New("store id must be greater than zero")
	ErrInvalidCustomer   = errors.New("customer id must be greater than zero")
)

// InvalidStatusError carries the rejected value and the accepted set for display.
type InvalidStatusError struct {
	Value string
	Valid []Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q, must be one of: %s", e.Value, joinStatuses(e.Valid))
}

func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }

// InvalidTransitionError describes a rejected move and what would have been allowed.
type InvalidTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot transition from %s to %s: %s is a terminal status", e.From, e.To, e.From)
	}
	return fmt.Sprintf("cannot transition from %s to %s, allowed: %s", e.From, e.To, joinStatuses(e.Allowed))
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func joinStatuses(statuses []Status) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}
