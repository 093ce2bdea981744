package uuid

import (
	google_uuid "github.com/google/uuid"
)

// MustUUID returns a random (version 4) UUID string.
// It panics if the system random source fails.
func MustUUID() string {
	return google_uuid.Must(google_uuid.NewRandom()).String()
}
