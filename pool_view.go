package stockpile

import (
	"iter"

	"github.com/TheBitDrifter/table"
)

var _ PoolReader = PoolView[struct{}]{}

// PoolView is a storage-owned pool as seen from outside the storage. Values
// can be read and patched in place, but membership only changes through the
// storage, which keeps entity signatures and groups in step.
type PoolView[T any] struct {
	pool *Pool[T]
}

// PoolOf is satisfied by *Pool[T] and PoolView[T].
type PoolOf[T any] interface {
	PoolReader
	raw() *Pool[T]
}

func (v PoolView[T]) Contains(e Entity) bool {
	return v.pool.Contains(e)
}

func (v PoolView[T]) IndexOf(e Entity) int {
	return v.pool.IndexOf(e)
}

func (v PoolView[T]) Size() int {
	return v.pool.Size()
}

func (v PoolView[T]) EntityAt(pos int) Entity {
	return v.pool.EntityAt(pos)
}

// Get returns the component of e without checking membership.
func (v PoolView[T]) Get(e Entity) *T {
	return v.pool.Get(e)
}

// At returns the component of e or an EntityNotFoundError.
func (v PoolView[T]) At(e Entity) (*T, error) {
	return v.pool.At(e)
}

func (v PoolView[T]) GetAt(pos int) *T {
	return v.pool.GetAt(pos)
}

// Patch applies fn to the component of e. Returns false if e is absent.
func (v PoolView[T]) Patch(e Entity, fn func(*T)) bool {
	return v.pool.Patch(e, fn)
}

// All yields each entity with a pointer to its component in dense order.
func (v PoolView[T]) All() iter.Seq2[Entity, *T] {
	return v.pool.All()
}

func (v PoolView[T]) Tag() bool {
	return v.pool.Tag()
}

func (v PoolView[T]) ElementType() table.ElementType {
	return v.pool.ElementType()
}

func (v PoolView[T]) raw() *Pool[T] {
	return v.pool
}

// contract unwraps the view so groups can recognise their own pools.
func (v PoolView[T]) contract() PoolContract {
	return v.pool
}
