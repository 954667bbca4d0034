package pkg

import "github.com/google/uuid"

// GenerateSessionID - generates a unique identifier for a game session.
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsSessionID - reports whether id looks like a value produced by GenerateSessionID.
func IsSessionID(id string) bool {
	return uuid.Validate(id) == nil
}
