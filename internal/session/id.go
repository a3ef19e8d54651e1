package session

import "github.com/google/uuid"

// NewProcessID returns a random process token for a new session.
func NewProcessID() string {
	return uuid.NewString()
}
