package utils

import "github.com/google/uuid"

// UUIDGenerator produces queue item identifiers.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7 string, so identifiers sort in creation order.
// If the v7 clock sequence cannot be read it falls back to a random v4
// identifier, which is still unique but no longer ordered.
func (UUIDGenerator) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
