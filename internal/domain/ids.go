package domain

import "github.com/google/uuid"

// NewRunID generates a random UUID string for use as a correlation id for
// a single invocation of a long-running component. Progress-file entries
// and log lines do not carry it.
func NewRunID() string {
	return uuid.NewString()
}
