package domain

import "github.com/google/uuid"

// IDGenerator assigns identities to locally created records.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (version 4) UUIDs. With 122 random bits the
// chance of any collision stays below one in a billion until roughly 10^14
// identities have been issued.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
