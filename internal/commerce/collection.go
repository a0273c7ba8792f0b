// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package commerce

import (
	"sync"

	"github.com/dentuss/Bazinga-Comics/pkg/result"
)

// collection is one synchronized list with its request sequencing.
//
// Every dispatched request takes the next id from begin. Only the response
// carrying the latest id may commit; anything older is stale.
type collection[T any] struct {
	name string

	mu     sync.Mutex
	state  result.Result[[]T]
	latest uint64

	// lastGood is the most recent server list of this session, for
	// RetainLastGood. nil until the first successful response.
	lastGood []T
}

func newCollection[T any](name string) *collection[T] {
	return &collection[T]{name: name, state: result.Ok([]T{})}
}

// begin reserves a request id. Fetches also flip the state to Loading.
func (c *collection[T]) begin(loading bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	if loading {
		c.state = result.Pending[[]T]()
	}
	return c.latest
}

// succeed adopts the server's list if id is still the latest.
func (c *collection[T]) succeed(id uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.latest {
		return false
	}
	if items == nil {
		items = []T{}
	}
	c.state = result.Ok(items)
	c.lastGood = items
	return true
}

// fail records a failure if id is still the latest. With retain set, a
// previously loaded list stays on screen instead of the error.
func (c *collection[T]) fail(id uint64, err error, retain bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.latest {
		return false
	}
	if retain && c.lastGood != nil {
		c.state = result.Ok(c.lastGood)
		return true
	}
	c.state = result.Fail[[]T](err)
	return true
}

// reset empties the collection and invalidates every in-flight request.
func (c *collection[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	c.state = result.Ok([]T{})
	c.lastGood = nil
}

func (c *collection[T]) current() result.Result[[]T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// items returns the Success payload, or nil while loading or failed.
func (c *collection[T]) items() []T {
	data, _ := result.Data(c.current())
	return data
}
