package uid

import "github.com/google/uuid"

// UUID generates time-ordered UUID strings, used for token identifiers.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a v7 UUID string, falling back to v4 when the entropy
// source fails.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
