package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string. IDs created within the same
// millisecond are monotonically increasing and safe for concurrent use.
func NewULID() string {
	return ulid.Make().String()
}
