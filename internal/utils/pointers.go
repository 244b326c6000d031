package utils

import (
	"fmt"
	"time"
)

func StringPtr(s string) *string {
	return &s
}

func IntPtr(i int) *int {
	return &i
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

// NilIfEmpty returns nil for an empty string so optional text columns are
// stored as NULL.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
