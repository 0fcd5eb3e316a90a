package cache

import "testing"

type fakeNode struct{ id uint32 }

func (f fakeNode) Kind() int8 { return 0 }

func (f fakeNode) Height() uint8 { return 0 }

func (f fakeNode) RecordCount() int { return 0 }

func (f fakeNode) Record(i int) []byte { return nil }

func (f fakeNode) ForwardLink() uint32 { return 0 }

func (f fakeNode) BackwardLink() uint32 { return 0 }

func TestNodeCache_PutGet(t *testing.T) {
	c := NewNodeCache(2)
	k1 := NodeKey{TreeID: TreeIDCatalog, NodeNumber: 1}
	if err := c.Put(k1, fakeNode{id: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(k1)
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.(fakeNode).id != 1 {
		t.Errorf("got wrong node back")
	}
}

func TestNodeCache_Eviction(t *testing.T) {
	c := NewNodeCache(2)
	k1 := NodeKey{TreeID: TreeIDCatalog, NodeNumber: 1}
	k2 := NodeKey{TreeID: TreeIDCatalog, NodeNumber: 2}
	k3 := NodeKey{TreeID: TreeIDCatalog, NodeNumber: 3}

	c.Put(k1, fakeNode{id: 1})
	c.Put(k2, fakeNode{id: 2})
	c.Get(k1) // touch k1 so k2 becomes the LRU victim
	c.Put(k3, fakeNode{id: 3})

	if _, ok := c.Get(k2); ok {
		t.Errorf("expected k2 to have been evicted")
	}
	if _, ok := c.Get(k1); !ok {
		t.Errorf("expected k1 to survive eviction")
	}
	if _, ok := c.Get(k3); !ok {
		t.Errorf("expected k3 to be present")
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestNodeCache_DifferentTreesDoNotCollide(t *testing.T) {
	c := NewNodeCache(4)
	kc := NodeKey{TreeID: TreeIDCatalog, NodeNumber: 5}
	ke := NodeKey{TreeID: TreeIDExtents, NodeNumber: 5}

	c.Put(kc, fakeNode{id: 100})
	c.Put(ke, fakeNode{id: 200})

	got, _ := c.Get(kc)
	if got.(fakeNode).id != 100 {
		t.Errorf("catalog entry corrupted by extents entry with same node number")
	}
}

func TestPrivateCache_CapacityOne(t *testing.T) {
	c := Private()
	k1 := NodeKey{TreeID: TreeIDCatalog, NodeNumber: 1}
	k2 := NodeKey{TreeID: TreeIDCatalog, NodeNumber: 2}

	c.Put(k1, fakeNode{id: 1})
	c.Put(k2, fakeNode{id: 2})

	if _, ok := c.Get(k1); ok {
		t.Errorf("capacity-1 cache should have evicted k1")
	}
	if _, ok := c.Get(k2); !ok {
		t.Errorf("expected k2 present")
	}
}
