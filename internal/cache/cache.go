// Package cache holds rendered markdown so cursor scrubbing does not
// re-run the renderer for every visited note.
package cache

import (
	"container/list"

	"github.com/quellen/nt/internal/tree"
)

// key identifies one rendered artifact. Width is part of the key so a
// terminal resize naturally re-renders instead of showing stale wraps.
type key struct {
	id    tree.NodeID
	width int
}

type entry struct {
	key      key
	rendered string
}

// RenderCache is an LRU over rendered note bodies. It is only touched
// from the UI loop, so it carries no lock.
type RenderCache struct {
	size      int
	evictList *list.List
	items     map[key]*list.Element
}

func NewRenderCache(size int) *RenderCache {
	if size < 1 {
		size = 1
	}
	return &RenderCache{
		size:      size,
		evictList: list.New(),
		items:     make(map[key]*list.Element),
	}
}

func (c *RenderCache) Get(id tree.NodeID, width int) (string, bool) {
	if ele, hit := c.items[key{id, width}]; hit {
		c.evictList.MoveToFront(ele)
		return ele.Value.(*entry).rendered, true
	}
	return "", false
}

func (c *RenderCache) Put(id tree.NodeID, width int, rendered string) {
	k := key{id, width}
	if ele, hit := c.items[k]; hit {
		c.evictList.MoveToFront(ele)
		ele.Value.(*entry).rendered = rendered
		return
	}

	ele := c.evictList.PushFront(&entry{k, rendered})
	c.items[k] = ele

	if c.evictList.Len() > c.size {
		c.removeOldest()
	}
}

// Invalidate drops every width variant for id. Called when a note's
// content changes or an edit round-trips.
func (c *RenderCache) Invalidate(id tree.NodeID) {
	for k, ele := range c.items {
		if k.id == id {
			c.removeElement(ele)
		}
	}
}

func (c *RenderCache) Len() int {
	return c.evictList.Len()
}

func (c *RenderCache) removeOldest() {
	ele := c.evictList.Back()
	if ele != nil {
		c.removeElement(ele)
	}
}

func (c *RenderCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
}
