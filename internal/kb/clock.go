package kb

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current instant. Core operations take a Clock instead
// of reading wall time so tests can pin "today".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Today returns the UTC calendar date of the clock's current instant.
func Today(c Clock) Date { return DateOf(c.Now()) }

// IDGenerator creates identifiers for new sections, topics, questions and links.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// NewID returns a new hyphenated UUIDv7.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
