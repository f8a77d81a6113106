package uuidx

import "github.com/google/uuid"

// New returns a time ordered (version 7) UUID.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns New().String().
func NewString() string {
	return New().String()
}

// Parse parses s, returning uuid.Nil for anything that isn't a UUID.
func Parse(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
