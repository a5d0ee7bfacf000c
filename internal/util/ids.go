// Package util provides small helpers shared across IntakeFlow components.
package util

import (
	"strings"

	"github.com/google/uuid"
)

// SessionIDPrefix marks identifiers issued for intake sessions.
const SessionIDPrefix = "s_"

// GenerateSessionID returns a new random session identifier in the form "s_<uuid>".
func GenerateSessionID() string {
	return SessionIDPrefix + uuid.NewString()
}

// IsValidSessionID reports whether id has the shape produced by GenerateSessionID.
func IsValidSessionID(id string) bool {
	rest, ok := strings.CutPrefix(id, SessionIDPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil && len(rest) == 36
}
