package identity

import (
	"sync"
	"sync/atomic"

	"github.com/okian/carelog/internal/domain/model"
)

// CacheStats reports memo effectiveness.
type CacheStats struct {
	Size   int64
	Hits   int64
	Misses int64
}

// node is a single memo entry, linked newest to oldest.
type node struct {
	key  string
	id   Identity
	prev *node
	next *node
}

func (n *node) reset() {
	n.key = ""
	n.id = Identity{}
	n.prev = nil
	n.next = nil
}

// Cached memoizes another Resolver keyed by (sender, role hint).
// For bounded mode (maxSize > 0) the oldest entry is evicted first and nodes
// are recycled through a sync.Pool. For unbounded mode only the map is used.
type Cached struct {
	next Resolver

	mu       sync.Mutex
	entries  map[string]*node
	head     *node // newest
	tail     *node // oldest
	maxSize  int
	size     atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	nodePool sync.Pool
}

// NewCached wraps next with a bounded memo.
func NewCached(next Resolver, opts ...Option) *Cached {
	c := &Cached{
		next:    next,
		maxSize: 4096,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[string]*node)
	if c.maxSize > 0 {
		c.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}
	return c
}

func cacheKey(senderRaw, roleHint string) string {
	return senderRaw + "\x00" + roleHint
}

// Resolve implements Resolver.
func (c *Cached) Resolve(senderRaw, roleHint string) Identity {
	key := cacheKey(senderRaw, roleHint)

	c.mu.Lock()
	if n, ok := c.entries[key]; ok {
		id := n.id
		c.mu.Unlock()
		c.hits.Add(1)
		return id
	}
	c.mu.Unlock()

	c.misses.Add(1)
	id := c.next.Resolve(senderRaw, roleHint)
	c.store(key, id)
	return id
}

// InferRole implements Resolver. Keyword inference is not memoized.
func (c *Cached) InferRole(senderRaw string, current model.Role) model.Role {
	return c.next.InferRole(senderRaw, current)
}

func (c *Cached) store(key string, id Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// another goroutine may have resolved the same key meanwhile
	if _, exists := c.entries[key]; exists {
		return
	}

	if c.maxSize <= 0 {
		c.entries[key] = &node{key: key, id: id}
		c.size.Add(1)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.key = key
	n.id = id
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.entries[key] = n
	c.size.Add(1)
}

// evictOldest must be called with c.mu held.
func (c *Cached) evictOldest() {
	victim := c.tail
	if victim == nil {
		return
	}
	c.tail = victim.prev
	if c.tail != nil {
		c.tail.next = nil
	} else {
		c.head = nil
	}
	delete(c.entries, victim.key)
	victim.reset()
	c.nodePool.Put(victim)
	c.size.Add(-1)
}

// Size returns the number of memoized identities.
func (c *Cached) Size() int64 {
	return c.size.Load()
}

// Stats returns a snapshot of the memo counters.
func (c *Cached) Stats() CacheStats {
	return CacheStats{
		Size:   c.size.Load(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
