// Package ids generates workspace and document identifiers.
//
// The Generator interface isolates id generation so the random production
// generator can be swapped for a deterministic one in tests.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces identifiers for locally synthesized entities.
type Generator interface {
	WorkspaceID() string
	DocumentID() string
}

// Random generates uuid-backed identifiers. The zero value is usable.
type Random struct{}

// WorkspaceID returns a new random workspace id.
func (Random) WorkspaceID() string {
	return "ws-" + uuid.NewString()
}

// DocumentID returns a new random document id.
func (Random) DocumentID() string {
	return "doc-" + uuid.NewString()
}

// Deterministic derives identifiers by hashing a fixed seed with a counter,
// so a test run produces the same id sequence every time.
type Deterministic struct {
	Seed string

	mu sync.Mutex
	n  int
}

// NewDeterministic returns a generator seeded with seed.
func NewDeterministic(seed string) *Deterministic {
	return &Deterministic{Seed: seed}
}

// WorkspaceID returns the next deterministic workspace id.
func (g *Deterministic) WorkspaceID() string {
	return "ws-" + g.next("workspace")
}

// DocumentID returns the next deterministic document id.
func (g *Deterministic) DocumentID() string {
	return "doc-" + g.next("document")
}

func (g *Deterministic) next(kind string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return Generate(fmt.Sprintf("%s/%s/%d", g.Seed, kind, g.n), DefaultLength)
}
