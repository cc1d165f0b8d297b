package forms

import "sync"

// RefCache is an ordered, session-scoped collection of reference entities
// (e.g. the suppliers selectable on an income form). It is replaced wholesale
// on re-fetch and appended to when a nested create flow produces a new entity;
// entries are never mutated in place.
type RefCache[E any] struct {
	mu    sync.RWMutex
	key   func(E) string
	items []E
}

// NewRefCache builds a cache keyed by the given identifier function.
func NewRefCache[E any](key func(E) string, items []E) *RefCache[E] {
	c := &RefCache[E]{key: key}
	c.Replace(items)
	return c
}

// Items returns a copy of the cached entities in order.
func (c *RefCache[E]) Items() []E {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]E, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of cached entities.
func (c *RefCache[E]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Replace swaps the full collection, typically after a re-fetch.
func (c *RefCache[E]) Replace(items []E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]E, len(items))
	copy(c.items, items)
}

// Append adds a newly created entity to the end of the collection.
func (c *RefCache[E]) Append(item E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Resolve returns the entity matching the selected identifier. The second
// return value is false when nothing is selected, the id is unknown, or the
// cache is still empty; callers must render dependent display fields empty in
// that case rather than keeping values from a previous selection.
func (c *RefCache[E]) Resolve(id string) (E, bool) {
	var zero E
	if id == "" {
		return zero, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.key(item) == id {
			return item, true
		}
	}
	return zero, false
}
