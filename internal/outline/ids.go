package outline

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator mints identifiers for new bullets and media attachments.
// Implementations must never return the same value twice.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator mints random UUIDv4 identifiers.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator mints prefixed, monotonically increasing identifiers
// ("b1", "b2", ...). Useful for tests and deterministic imports.
type SequenceGenerator struct {
	Prefix string

	mu   sync.Mutex
	next int
}

// NewID implements IDGenerator.
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s%d", g.Prefix, g.next)
}
