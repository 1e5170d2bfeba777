package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock hands out model revisions. Every mutation ticks it once, so viewers
// can drop snapshots older than the one they already hold.
type Clock struct {
	session string
	counter atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{session: uuid.NewString()}
}

// Tick increments the clock and returns the new revision.
func (c *Clock) Tick() uint64 {
	return c.counter.Add(1)
}

// Revision returns the latest revision without advancing it.
func (c *Clock) Revision() uint64 {
	return c.counter.Load()
}

// Session identifies this drawing session.
func (c *Clock) Session() string {
	return c.session
}

func newSampleID() string {
	return uuid.NewString()
}
