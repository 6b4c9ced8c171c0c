package models

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a schedule form fails required-field or
// vocabulary checks. It blocks submission and is never fatal.
type ValidationError struct {
	MissingFields []string
	Reason        string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.MissingFields, ", "))
	}
	return e.Reason
}

// WriteError wraps a rejected create/update/delete against the store.
// Surfaced to the caller as a retryable failure; never retried internally.
type WriteError struct {
	Op       string
	NotFound bool
	Err      error
}

func (e *WriteError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("%s: schedule not found", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// SubscriptionError is reported once when the schedule watch cannot be
// established or terminates abnormally. Consumers keep their last-known
// snapshot rather than clearing it.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("schedule subscription: %v", e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}
