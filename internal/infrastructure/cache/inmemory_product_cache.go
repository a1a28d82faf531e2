package cache

import (
	"context"
	"sync"
	"time"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/google/uuid"
)

type productEntry struct {
	ref       procurement.ProductRef
	expiresAt time.Time
}

type productKey struct {
	tenantID  uuid.UUID
	productID uuid.UUID
}

// InMemoryProductCache implements ProductCache using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryProductCache struct {
	mu        sync.RWMutex
	entries   map[productKey]productEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryProductCache creates a new in-memory product cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryProductCache(ttl time.Duration) *InMemoryProductCache {
	c := &InMemoryProductCache{
		entries:  make(map[productKey]productEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached reference, or nil on a miss
func (c *InMemoryProductCache) Get(_ context.Context, tenantID, productID uuid.UUID) (*procurement.ProductRef, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[productKey{tenantID, productID}]
	if !exists {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		return nil, nil // Expired, treat as a miss
	}

	ref := e.ref
	return &ref, nil
}

// Set stores the reference with the configured TTL
func (c *InMemoryProductCache) Set(_ context.Context, tenantID uuid.UUID, ref procurement.ProductRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[productKey{tenantID, ref.ID}] = productEntry{
		ref:       ref,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached reference for a product
func (c *InMemoryProductCache) Invalidate(_ context.Context, tenantID, productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, productKey{tenantID, productID})
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryProductCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryProductCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryProductCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryProductCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryProductCache implements ProductCache
var _ ProductCache = (*InMemoryProductCache)(nil)
