package board

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time. Injected so tests can pin timestamps.
type Clock func() time.Time

// IDFunc produces a new unique entity identifier
type IDFunc func() string

// NewID returns a random UUID string
func NewID() string {
	return uuid.New().String()
}
