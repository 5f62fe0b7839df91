// Package id generates identifiers for users and requests.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated identifiers.
const (
	PrefixUser = "user"
)

// Generate creates a prefixed NanoID, e.g. "user-V1StGXR8_Z5jdHi6B-myT".
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewUserID returns a fresh user identifier.
func NewUserID() (string, error) {
	return Generate(PrefixUser)
}

// NewRequestID returns a random UUID used to correlate log lines of one request.
func NewRequestID() string {
	return uuid.NewString()
}

// ValidRequestID reports whether a client supplied request ID can be reused.
func ValidRequestID(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
