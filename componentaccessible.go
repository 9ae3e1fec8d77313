package stockpile

import (
	"github.com/TheBitDrifter/table"
)

var _ Component = AccessibleComponent[struct{}]{}

// AccessibleComponent is a typed component key. It identifies the pool of T
// in any storage and provides typed access to it.
type AccessibleComponent[T any] struct {
	table.ElementType
}

func (c AccessibleComponent[T]) newStoredPool() storedPool {
	return newPool[T](c.ElementType)
}

// PoolIn returns a view of the pool of T in sto, creating the pool if needed.
func (c AccessibleComponent[T]) PoolIn(sto Storage) PoolView[T] {
	return PoolView[T]{pool: c.pool(sto)}
}

func (c AccessibleComponent[T]) pool(sto Storage) *Pool[T] {
	pool, _ := sto.(*storage).poolFor(c)
	return pool.(*Pool[T])
}

// Add attaches value to e. It returns false without error when e already has
// the component.
func (c AccessibleComponent[T]) Add(sto Storage, e Entity, value T) (bool, error) {
	s := sto.(*storage)
	pool, row := s.poolFor(c)
	typed := pool.(*Pool[T])
	return s.attach(e, row, pool, func() (bool, error) {
		return typed.Emplace(e, value), nil
	})
}

// AddFunc attaches the value built by construct. A failing constructor leaves
// storage unchanged.
func (c AccessibleComponent[T]) AddFunc(sto Storage, e Entity, construct func() (T, error)) (bool, error) {
	s := sto.(*storage)
	pool, row := s.poolFor(c)
	typed := pool.(*Pool[T])
	return s.attach(e, row, pool, func() (bool, error) {
		return typed.EmplaceFunc(e, construct)
	})
}

// EnqueueAdd attaches value now, or once sto unlocks if it is locked.
func (c AccessibleComponent[T]) EnqueueAdd(sto Storage, e Entity, value T) error {
	if !sto.Locked() {
		_, err := c.Add(sto, e, value)
		return err
	}
	s := sto.(*storage)
	s.opQueue.EnqueueComponentOp(opAddComponent, e, s.register(c), c, func() error {
		_, err := c.Add(s, e, value)
		return err
	})
	return nil
}

// Remove detaches T from e.
func (c AccessibleComponent[T]) Remove(sto Storage, e Entity) (bool, error) {
	return sto.RemoveComponent(e, c)
}

// Has reports whether e has T in sto.
func (c AccessibleComponent[T]) Has(sto Storage, e Entity) bool {
	return sto.HasComponent(e, c)
}

// Get returns e's T without checking that it exists.
func (c AccessibleComponent[T]) Get(sto Storage, e Entity) *T {
	return c.pool(sto).Get(e)
}

// At returns e's T or an EntityNotFoundError.
func (c AccessibleComponent[T]) At(sto Storage, e Entity) (*T, error) {
	pool, _, ok := sto.(*storage).lookup(c)
	if !ok {
		return nil, EntityNotFoundError{Entity: e, ElementType: c.ElementType}
	}
	return pool.(*Pool[T]).At(e)
}

// Patch applies fn to e's T. Returns false if e lacks it.
func (c AccessibleComponent[T]) Patch(sto Storage, e Entity, fn func(*T)) bool {
	pool, _, ok := sto.(*storage).lookup(c)
	return ok && pool.(*Pool[T]).Patch(e, fn)
}

// GetFromCursor returns the T of the entity under the cursor. Pools aligned
// with the cursor (the grouped pools, or the pool being walked) are read by
// position; anything else goes through the sparse index.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	pool := c.pool(cursor.storage)
	if cursor.aligned(pool) {
		return pool.GetAt(cursor.position)
	}
	return pool.Get(cursor.current)
}

// GetFromCursorSafe is GetFromCursor for components the entity may lack.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	stored, _, ok := cursor.storage.(*storage).lookup(c)
	if !ok {
		return false, nil
	}
	pool := stored.(*Pool[T])
	if cursor.aligned(pool) {
		return true, pool.GetAt(cursor.position)
	}
	v, err := pool.At(cursor.current)
	if err != nil {
		return false, nil
	}
	return true, v
}
