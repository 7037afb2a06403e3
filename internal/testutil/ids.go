package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator issues "<prefix>-0001", "<prefix>-0002", ... and
// satisfies store.IDGenerator. Ids sort in issue order.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator returns a generator using prefix, or "run" when
// prefix is empty.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
