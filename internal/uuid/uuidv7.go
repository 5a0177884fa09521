// Package uuid generates the identifiers used for transactions: time-ordered
// UUIDv7 values for records created by the remote store and prefixed
// placeholders for records the ledger engine has only saved locally.
package uuid

import (
	"strings"

	googleuuid "github.com/google/uuid"
)

// LocalPrefix marks identifiers synthesized by the ledger engine while the
// remote store was unreachable. The remote store never issues such ids.
const LocalPrefix = "local-"

// New generates a new UUIDv7 based on the current timestamp.
// UUIDv7 is time-ordered and suitable for use as database primary keys.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to standard UUIDv4 if random generation fails
		return googleuuid.New().String()
	}
	return id.String()
}

// NewLocal returns a locally-unique identifier for an unconfirmed record.
func NewLocal() string {
	return LocalPrefix + New()
}

// IsLocal reports whether id was synthesized by NewLocal.
func IsLocal(id string) bool {
	return strings.HasPrefix(id, LocalPrefix)
}

// Parse validates and parses a UUID string
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
