package inference

import (
	"container/list"
	"context"
	"sync"

	"github.com/automlhq/tabular/pkg/errors"
)

// DefaultCacheCapacity bounds how many model handles stay resident at
// once.
const DefaultCacheCapacity = 3

type cacheEntry struct {
	modelID string
	handle  Handle
}

// ModelCache is a fixed-capacity, least-recently-used map from model id to
// loaded Handle. It is the only shared mutable state on the prediction
// path.
//
// The lock guards only the check/insert/evict sequence; the loader runs
// outside it, so a cold id never serializes unrelated predictions.
// Concurrent misses for the same id may both load; the loser's handle is
// closed and the winner's kept, which keeps loading at-least-once without
// corrupting the map.
type ModelCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front is most recently used
}

// NewModelCache creates a cache holding at most capacity handles. A
// capacity below one falls back to the default.
func NewModelCache(capacity int) *ModelCache {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &ModelCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// GetOrLoad returns the cached handle for modelID, loading it with loader
// on a miss. The boolean reports a cache hit. Loader failures surface as
// ModelUnavailableError.
func (c *ModelCache) GetOrLoad(ctx context.Context, modelID string, loader Loader) (Handle, bool, error) {
	c.mu.Lock()
	if el, ok := c.entries[modelID]; ok {
		c.order.MoveToFront(el)
		h := el.Value.(*cacheEntry).handle
		c.mu.Unlock()
		return h, true, nil
	}
	c.mu.Unlock()

	h, err := loader(ctx, modelID)
	if err != nil {
		return nil, false, errors.NewModelUnavailableError(modelID, err)
	}

	c.mu.Lock()
	if el, ok := c.entries[modelID]; ok {
		// Lost a concurrent load race; keep the resident handle.
		c.order.MoveToFront(el)
		existing := el.Value.(*cacheEntry).handle
		c.mu.Unlock()
		_ = h.Close()
		return existing, true, nil
	}

	c.entries[modelID] = c.order.PushFront(&cacheEntry{modelID: modelID, handle: h})
	var evicted Handle
	if c.order.Len() > c.capacity {
		back := c.order.Back()
		entry := back.Value.(*cacheEntry)
		c.order.Remove(back)
		delete(c.entries, entry.modelID)
		evicted = entry.handle
	}
	c.mu.Unlock()

	if evicted != nil {
		_ = evicted.Close()
	}
	return h, false, nil
}

// Len returns the number of resident handles.
func (c *ModelCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Invalidate drops the handle for modelID, closing it if present. Used
// when a model is redeployed under the same id.
func (c *ModelCache) Invalidate(modelID string) {
	c.mu.Lock()
	el, ok := c.entries[modelID]
	var h Handle
	if ok {
		h = el.Value.(*cacheEntry).handle
		c.order.Remove(el)
		delete(c.entries, modelID)
	}
	c.mu.Unlock()
	if h != nil {
		_ = h.Close()
	}
}

// Close drops every resident handle.
func (c *ModelCache) Close() {
	c.mu.Lock()
	var handles []Handle
	for el := c.order.Front(); el != nil; el = el.Next() {
		handles = append(handles, el.Value.(*cacheEntry).handle)
	}
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()
	for _, h := range handles {
		_ = h.Close()
	}
}
