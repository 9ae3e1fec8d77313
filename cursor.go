package stockpile

import (
	"iter"
)

// Cursor walks the entities of a group, a single pool or a query match. The
// storage stays locked while a walk is in progress: direct mutations fail
// and Enqueue* calls are deferred until the walk ends.
type Cursor struct {
	storage Storage

	// Exactly one source is set.
	query     QueryNode
	group     *Group
	component Component

	// Current iteration state
	source      PoolContract
	walk        []Entity
	alignedWith []PoolContract
	limit       int
	next        int
	position    int
	current     Entity

	initialized bool
	err         error
}

func newCursor(query QueryNode, storage Storage) *Cursor {
	return &Cursor{
		query:   query,
		storage: storage,
	}
}

func newGroupCursor(group *Group, storage Storage) *Cursor {
	return &Cursor{
		group:   group,
		storage: storage,
	}
}

func newPoolCursor(component Component, storage Storage) *Cursor {
	return &Cursor{
		component: component,
		storage:   storage,
	}
}

// Next advances to the next entity. When it returns false the walk is over,
// the cursor has been reset and the storage unlocked.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	for c.next < c.limit {
		pos := c.next
		c.next++
		en := c.entityAt(pos)
		if c.query != nil && !c.query.Evaluate(c.storage.Signature(en), c.storage) {
			continue
		}
		c.position, c.current = pos, en
		return true
	}
	c.Reset()
	return false
}

// Entities yields the dense position and entity of every match.
func (c *Cursor) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for c.Next() {
			if !yield(c.position, c.current) {
				c.Reset()
				return
			}
		}
	}
}

func (c *Cursor) entityAt(pos int) Entity {
	if c.source != nil {
		return c.source.EntityAt(pos)
	}
	return c.walk[pos]
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.storage.Lock()
	c.initialized = true
	c.next = 0

	switch {
	case c.group != nil:
		c.source = c.group.pools[0]
		c.limit = c.group.Len()
		c.alignedWith = c.group.pools
	case c.component != nil:
		pool, _, ok := c.storage.(*storage).lookup(c.component)
		if !ok {
			return
		}
		c.source = pool
		c.limit = pool.Size()
		c.alignedWith = []PoolContract{pool}
	default:
		c.initializeQuery()
	}
}

// initializeQuery walks the smallest pool the query requires, or every
// valid entity when the query requires none.
func (c *Cursor) initializeQuery() {
	var required []Component
	if r, ok := c.query.(interface{ required() []Component }); ok {
		required = r.required()
	}
	if len(required) == 0 {
		for en := range c.storage.Entities() {
			c.walk = append(c.walk, en)
		}
		c.limit = len(c.walk)
		return
	}
	var smallest PoolContract
	for _, comp := range required {
		pool, _, ok := c.storage.(*storage).lookup(comp)
		if !ok {
			return
		}
		if smallest == nil || pool.Size() < smallest.Size() {
			smallest = pool
		}
	}
	c.source = smallest
	c.limit = smallest.Size()
	c.alignedWith = []PoolContract{smallest}
}

func (c *Cursor) aligned(pool PoolContract) bool {
	for _, p := range c.alignedWith {
		if p == pool {
			return true
		}
	}
	return false
}

// Reset abandons the walk and unlocks the storage, flushing queued
// operations. A flush error is reported by Err.
func (c *Cursor) Reset() {
	wasInitialized := c.initialized
	c.source = nil
	c.walk = nil
	c.alignedWith = nil
	c.limit = 0
	c.next = 0
	c.position = 0
	c.current = Null
	c.initialized = false
	if wasInitialized {
		c.err = c.storage.Unlock()
	}
}

// Err returns the error from the last queue flush, if any.
func (c *Cursor) Err() error {
	return c.err
}

// CurrentEntity returns the dense position and entity under the cursor.
func (c *Cursor) CurrentEntity() (int, Entity) {
	return c.position, c.current
}

func (c *Cursor) RemainingInSource() int {
	return c.limit - c.next
}

// TotalMatched counts the matches without moving the cursor.
func (c *Cursor) TotalMatched() int {
	wasInitialized := c.initialized
	c.initialize()
	total := 0
	if c.query == nil {
		total = c.limit
	} else {
		for pos := 0; pos < c.limit; pos++ {
			if c.query.Evaluate(c.storage.Signature(c.entityAt(pos)), c.storage) {
				total++
			}
		}
	}
	if !wasInitialized {
		c.Reset()
	}
	return total
}
