package service

import (
	"math"
	"sync"
	"time"
)

// maxTrackedID bounds what Observe follows. Ids above it are far past any
// clock reading, so tracking them would only walk last toward overflow.
const maxTrackedID = math.MaxInt64 / 2

// IDGenerator hands out timestamp-derived ids in Unix milliseconds. Two
// calls in the same millisecond still get distinct, increasing ids.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()

	if id <= g.last {
		id = g.last + 1
	}

	g.last = id

	return id
}

// Observe keeps the generator ahead of ids that entered the collection
// from elsewhere, such as seed data. Ids above maxTrackedID are ignored:
// Next cannot reach them, so they never collide.
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id > g.last && id <= maxTrackedID {
		g.last = id
	}
}
