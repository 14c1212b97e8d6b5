package domain

import (
	"errors"
	"fmt"
)

// Delivery error taxonomy. The dispatcher classifies every per-item failure
// into exactly one of these buckets and converts it into a state transition;
// errors never escape a polling cycle.
var (
	// ErrMissingConfig indicates a required secret or credential is absent.
	// It fails the whole cycle closed: the worker logs, skips dequeuing and
	// keeps polling. It is never attributed to individual rows.
	ErrMissingConfig = errors.New("delivery configuration missing")

	// ErrTransientDelivery indicates a network failure, a non-2xx response
	// or a provider rejection. Retryable per the backoff policy.
	ErrTransientDelivery = errors.New("transient delivery failure")

	// ErrPermanentPayload indicates the stored payload fails schema
	// validation. The row dead-letters immediately without consuming its
	// retry budget.
	ErrPermanentPayload = errors.New("permanent payload failure")

	// ErrUnknownChannel indicates an unsupported channel value.
	// Non-retryable; the row dead-letters.
	ErrUnknownChannel = errors.New("unknown delivery channel")
)

// Transient wraps err as a retryable delivery failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransientDelivery, err)
}

// Transientf builds a retryable delivery failure from a format string.
func Transientf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransientDelivery, fmt.Sprintf(format, args...))
}

// Permanentf builds a payload failure that dead-letters without retrying.
func Permanentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermanentPayload, fmt.Sprintf(format, args...))
}

// IsPermanent reports whether err must dead-letter the row regardless of the
// remaining retry budget.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentPayload) || errors.Is(err, ErrUnknownChannel)
}
