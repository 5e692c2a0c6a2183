package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces deterministic UUIDv7-shaped web ids and plan slugs.
type IDGenerator struct {
	mu      sync.Mutex
	counter uint64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return g.counter
}

// NextUUID returns 01900000-0000-7000-8000-<counter>. It never fails; the
// error result matches uuid.NewV7.
func (g *IDGenerator) NextUUID() (uuid.UUID, error) {
	return uuid.MustParse(fmt.Sprintf("01900000-0000-7000-8000-%012x", g.next())), nil
}

// NextSlug returns an 8 character alphanumeric slug such as "slug0001".
func (g *IDGenerator) NextSlug() (string, error) {
	return fmt.Sprintf("slug%04d", g.next()%10000), nil
}

// Reset restarts the sequence.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}
