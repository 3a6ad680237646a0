package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appcatalog "github.com/pharmacy-pos/backend/internal/application/catalog"
)

// MemoryStockCache is an in-process stock snapshot cache for single-instance
// deployments and tests.
type MemoryStockCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	snapshot  appcatalog.StockSnapshot
	expiresAt time.Time
}

// NewMemoryStockCache creates an in-memory stock snapshot cache
func NewMemoryStockCache(ttl time.Duration) *MemoryStockCache {
	return &MemoryStockCache{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
	}
}

// Get returns the cached snapshot, treating expired entries as misses
func (c *MemoryStockCache) Get(_ context.Context, productID uuid.UUID) (*appcatalog.StockSnapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[productID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.Invalidate(context.Background(), productID)
		return nil, false
	}
	snapshot := entry.snapshot
	return &snapshot, true
}

// Set stores the snapshot with the configured TTL
func (c *MemoryStockCache) Set(_ context.Context, productID uuid.UUID, snapshot appcatalog.StockSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[productID] = memoryEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops the snapshot for a product
func (c *MemoryStockCache) Invalidate(_ context.Context, productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, productID)
}

var _ appcatalog.StockSnapshotCache = (*MemoryStockCache)(nil)
