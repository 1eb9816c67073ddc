package publish

import (
	"context"
	"sync"
	"sync/atomic"

	"braces.dev/errtrace"
	"golang.org/x/sync/semaphore"
)

// Group serializes runs that share a concurrency group.
//
// Waiting runs are admitted in the order they arrived.
// A run holding the group is never interrupted.
// The zero value is an unheld group.
type Group struct {
	once    sync.Once
	sem     *semaphore.Weighted
	waiting atomic.Int64
}

func (g *Group) init() {
	g.once.Do(func() {
		g.sem = semaphore.NewWeighted(1)
	})
}

// Acquire blocks until the caller holds the group
// or ctx is done.
// A caller that gives up leaves the queue.
//
// The returned function releases the group.
// Calls after the first are no-ops.
func (g *Group) Acquire(ctx context.Context) (release func(), err error) {
	g.init()

	if !g.sem.TryAcquire(1) {
		g.waiting.Add(1)
		err := g.sem.Acquire(ctx, 1)
		g.waiting.Add(-1)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.sem.Release(1) })
	}, nil
}

// Waiting reports the number of runs waiting for the group.
func (g *Group) Waiting() int {
	return int(g.waiting.Load())
}

// Groups is a set of named groups.
// The zero value is empty and ready to use.
type Groups struct {
	mu     sync.Mutex
	groups map[string]*Group
}

// Get returns the group with the given name, creating it if needed.
func (gs *Groups) Get(name string) *Group {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.groups == nil {
		gs.groups = make(map[string]*Group)
	}
	g, ok := gs.groups[name]
	if !ok {
		g = new(Group)
		gs.groups[name] = g
	}
	return g
}
