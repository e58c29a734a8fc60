// Package itemcache holds fetched invoice line items for the lifetime of one
// screen session, so repeated expansion or a print preview of the same
// invoice never refetches.
package itemcache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

// Cache maps invoice ids to their fetched items. Entries are never
// invalidated once populated; items are immutable from this subsystem's
// perspective. Concurrent duplicate fetches for the same id are tolerated,
// the second Put simply overwrites with identical data.
type Cache struct {
	mu      sync.Mutex
	items   map[uuid.UUID][]*invoice.Item
	loading map[uuid.UUID]struct{}
}

func New() *Cache {
	return &Cache{
		items:   make(map[uuid.UUID][]*invoice.Item),
		loading: make(map[uuid.UUID]struct{}),
	}
}

// Get returns the cached items and whether the id has an entry. A populated
// entry may hold an empty slice; the bool is what distinguishes "no items"
// from "not fetched yet".
func (c *Cache) Get(id uuid.UUID) ([]*invoice.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, ok := c.items[id]

	return items, ok
}

// Put stores the fetched items and clears the id's loading marker.
func (c *Cache) Put(id uuid.UUID, items []*invoice.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[id] = items
	delete(c.loading, id)
}

// StartLoading marks the id as having a fetch in flight so its row can show
// a spinner independently of other expanded rows.
func (c *Cache) StartLoading(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading[id] = struct{}{}
}

// DoneLoading clears the in-flight marker without storing anything, used on
// fetch failure so the row becomes expandable again.
func (c *Cache) DoneLoading(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.loading, id)
}

// Loading reports whether a fetch for the id is in flight.
func (c *Cache) Loading(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.loading[id]

	return ok
}
