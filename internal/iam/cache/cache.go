// Package cache keeps recently read tenants in process memory. Entries are
// reachable by tenant ID, UUID and name.
package cache

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/metrics"
)

const (
	idPrefix   = "id:"
	uuidPrefix = "uuid:"
	namePrefix = "name:"
)

// Tenants is a ristretto backed tenant cache. Each entry costs one unit, so
// maxEntries bounds the number of cached tenants.
type Tenants struct {
	entries *ristretto.Cache[string, domain.Tenant]
	aliases *ristretto.Cache[string, string]
	ttl     time.Duration

	// gen advances on every invalidation. A load started under an older
	// generation must not be cached.
	mu  sync.Mutex
	gen uint64
}

// NewTenants creates a cache holding up to maxEntries tenants for ttl each.
func NewTenants(maxEntries int64, ttl time.Duration) (*Tenants, error) {
	entries, err := ristretto.NewCache(&ristretto.Config[string, domain.Tenant]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	aliases, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters:        maxEntries * 20,
		MaxCost:            maxEntries * 2,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		entries.Close()
		return nil, err
	}

	return &Tenants{entries: entries, aliases: aliases, ttl: ttl}, nil
}

// Get looks a tenant up by ID, UUID or name, in that order.
func (c *Tenants) Get(ref string) (domain.Tenant, bool) {
	if t, ok := c.entries.Get(idPrefix + ref); ok {
		metrics.TenantCacheLookups.WithLabelValues("hit").Inc()
		return t, true
	}

	for _, prefix := range []string{uuidPrefix, namePrefix} {
		id, ok := c.aliases.Get(prefix + ref)
		if !ok {
			continue
		}
		if t, ok := c.entries.Get(idPrefix + id); ok {
			metrics.TenantCacheLookups.WithLabelValues("hit").Inc()
			return t, true
		}
	}

	metrics.TenantCacheLookups.WithLabelValues("miss").Inc()
	return domain.Tenant{}, false
}

// Generation returns the current invalidation generation. Take it before
// reading the store and hand it to PutIfCurrent.
func (c *Tenants) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// PutIfCurrent stores t only if nothing was invalidated since gen was
// taken, and reports whether it did.
func (c *Tenants) PutIfCurrent(t domain.Tenant, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.set(t)
	return true
}

// Put stores t unconditionally.
func (c *Tenants) Put(t domain.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(t)
}

// set writes through ristretto's buffers and waits for them to land so an
// immediate Get observes the entry.
func (c *Tenants) set(t domain.Tenant) {
	c.entries.SetWithTTL(idPrefix+t.ID, t, 1, c.ttl)
	c.aliases.SetWithTTL(uuidPrefix+t.UUID, t.ID, 1, c.ttl)
	c.aliases.SetWithTTL(namePrefix+t.Name, t.ID, 1, c.ttl)
	c.entries.Wait()
	c.aliases.Wait()
}

// Invalidate drops t under every key it may have been cached with.
func (c *Tenants) Invalidate(t domain.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries.Del(idPrefix + t.ID)
	c.aliases.Del(uuidPrefix + t.UUID)
	c.aliases.Del(namePrefix + t.Name)
}

// Clear empties the cache.
func (c *Tenants) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries.Clear()
	c.aliases.Clear()
}

func (c *Tenants) Close() {
	c.entries.Close()
	c.aliases.Close()
}
