// Package cache provides the bounded LRU node cache B-tree file readers use
// to avoid re-decoding recently visited nodes. Modeled on an
// object-map-style btree cache: container/list LRU order, a sync.RWMutex,
// and hit/miss/eviction counters, narrowed to a single level since HFS has
// no separate raw-block cache tier.
package cache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/deploymenttheory/go-hfs/internal/interfaces"
)

// NodeKey identifies a cached node by which B-tree it belongs to (catalog,
// extents, or attributes, distinguished by TreeID) and its node number
// within that tree's node array.
type NodeKey struct {
	TreeID     int
	NodeNumber uint32
}

// Tree IDs used as NodeKey.TreeID across the package.
const (
	TreeIDCatalog = iota
	TreeIDExtents
	TreeIDAttributes
)

type lruEntry struct {
	key     NodeKey
	node    interfaces.HFSNode
	element *list.Element
}

// NodeCache is a bounded, thread-safe LRU cache of decoded B-tree nodes.
type NodeCache struct {
	mu        sync.RWMutex
	entries   map[NodeKey]*lruEntry
	order     *list.List
	maxNodes  int
	hits      int64
	misses    int64
	evictions int64
}

// NewNodeCache creates a cache holding at most maxNodes entries. A
// non-positive maxNodes is treated as 1, matching Private()'s behavior.
func NewNodeCache(maxNodes int) *NodeCache {
	if maxNodes <= 0 {
		maxNodes = 1
	}
	return &NodeCache{
		entries:  make(map[NodeKey]*lruEntry),
		order:    list.New(),
		maxNodes: maxNodes,
	}
}

// Private returns a capacity-1 cache, for recursive B-tree descent paths
// that want to avoid re-reading the same node twice on a single traversal
// without holding shared cache capacity across the whole volume.
func Private() *NodeCache {
	return NewNodeCache(1)
}

// Get retrieves a cached node.
func (c *NodeCache) Get(key NodeKey) (interfaces.HFSNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.order.MoveToFront(e.element)
		c.hits++
		return e.node, true
	}
	c.misses++
	return nil, false
}

// Put stores a decoded node in the cache, evicting the least recently used
// entry if the cache is at capacity.
func (c *NodeCache) Put(key NodeKey, node interfaces.HFSNode) error {
	if node == nil {
		return fmt.Errorf("cache.NodeCache.Put: cannot cache nil node")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.node = node
		c.order.MoveToFront(existing.element)
		return nil
	}

	element := c.order.PushFront(key)
	c.entries[key] = &lruEntry{key: key, node: node, element: element}

	for len(c.entries) > c.maxNodes && c.order.Len() > 0 {
		c.evictOldest()
	}
	return nil
}

// Invalidate removes one entry, if present.
func (c *NodeCache) Invalidate(key NodeKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.order.Remove(e.element)
	}
}

// Clear removes all entries.
func (c *NodeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[NodeKey]*lruEntry)
	c.order = list.New()
}

func (c *NodeCache) evictOldest() {
	element := c.order.Back()
	if element == nil {
		return
	}
	key := element.Value.(NodeKey)
	delete(c.entries, key)
	c.order.Remove(element)
	c.evictions++
}

// Stats reports cache hit/miss/eviction counters.
type Stats struct {
	Count     int
	Hits      int64
	Misses    int64
	HitRate   float64
	Evictions int64
}

// Stats returns a snapshot of the cache's performance counters.
func (c *NodeCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Count:     len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
