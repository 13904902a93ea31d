package utils

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateID returns a new record identifier. ULIDs sort lexicographically in creation order.
func GenerateID() string {
	return ulid.Make().String()
}

// GenerateEventID returns a random identifier for requests, events and lock tokens
func GenerateEventID() string {
	return uuid.New().String()
}
