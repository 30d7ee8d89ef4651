package anubis

import (
	"container/list"
	"sync"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/player"
)

type cachedPrincipal struct {
	key       string
	principal player.Principal
	expiresAt time.Time
}

// principalCache is a bounded TTL cache keyed by token hash. Once full it
// drops the oldest insert. A non-positive ttl disables caching.
type principalCache struct {
	ttl   time.Duration
	limit int
	now   func() time.Time

	mu    sync.Mutex
	order *list.List // front is newest
	byKey map[string]*list.Element
}

func newPrincipalCache(ttl time.Duration, limit int) *principalCache {
	return &principalCache{
		ttl:   ttl,
		limit: limit,
		now:   time.Now,
		order: list.New(),
		byKey: make(map[string]*list.Element),
	}
}

func (c *principalCache) Get(key string) (player.Principal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[key]
	if !ok {
		return player.Principal{}, false
	}
	entry := el.Value.(*cachedPrincipal)
	if !c.now().Before(entry.expiresAt) {
		c.remove(el)
		return player.Principal{}, false
	}
	return entry.principal, true
}

func (c *principalCache) Set(key string, principal player.Principal) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byKey[key]; ok {
		c.remove(el)
	}
	for c.limit > 0 && c.order.Len() >= c.limit {
		c.remove(c.order.Back())
	}
	c.byKey[key] = c.order.PushFront(&cachedPrincipal{
		key:       key,
		principal: principal,
		expiresAt: c.now().Add(c.ttl),
	})
}

func (c *principalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *principalCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.byKey, el.Value.(*cachedPrincipal).key)
}
