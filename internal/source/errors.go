// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the source could not answer (network failure,
	// remote error, rate limiting). The fallback resolver recovers from it.
	ErrUnavailable = errors.New("record source unavailable")

	// ErrNotFound indicates the source answered but holds no such record.
	ErrNotFound = errors.New("record not found")

	// ErrUnsupported indicates a kind the operation does not accept.
	ErrUnsupported = errors.New("unsupported kind")
)

// MalformedRecordError describes a record with an unexpected shape. Such
// records are skipped; processing continues with the rest.
type MalformedRecordError struct {
	Kind   Kind
	ID     string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed %s record %s: %s", e.Kind, e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed %s record: %s", e.Kind, e.Reason)
}

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// IsUnavailable reports whether err signals an unavailable source.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsNotFound reports whether err signals a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
