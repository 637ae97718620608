package schedule

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces opaque unique ids for new clients and jobs. The engine
// trusts the generator; it does not enforce uniqueness itself.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// UUIDGenerator returns the production generator backed by random UUIDs.
func UUIDGenerator() IDGenerator { return uuidGenerator{} }

// SequenceGenerator yields id-1, id-2, ... for deterministic tests.
type SequenceGenerator struct {
	n atomic.Int64
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("id-%d", g.n.Add(1))
}
