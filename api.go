package stockpile

import (
	"iter"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// PoolReader is the read side of a pool, independent of its component type.
type PoolReader interface {
	Contains(Entity) bool
	Size() int
	EntityAt(pos int) Entity
	IndexOf(Entity) int
}

// PoolContract is what groups need from a pool: reads plus the two
// operations that reorder or shrink it.
type PoolContract interface {
	PoolReader
	Swap(a, b int)
	Erase(Entity) bool
}

// Storage owns the entity allocator, one pool per component type and the
// groups formed over those pools.
type Storage interface {
	NewEntities(int, ...Component) ([]Entity, error)
	EnqueueNewEntities(int, ...Component) error
	DestroyEntities(...Entity) error
	EnqueueDestroyEntities(...Entity) error
	DestroyAll() error
	Valid(Entity) bool
	Len() int
	Entities() iter.Seq[Entity]

	AddComponent(Entity, Component) error
	RemoveComponent(Entity, Component) (bool, error)
	EnqueueAddComponent(Entity, Component) error
	EnqueueRemoveComponent(Entity, Component) error
	HasComponent(Entity, Component) bool
	Signature(Entity) mask.Mask

	Pool(Component) (PoolReader, bool)
	Group(...Component) (*Group, error)
	Registered(Component) bool
	RowIndexFor(Component) uint32
	Tidy() int

	Locked() bool
	AddLock(bit uint32)
	RemoveLock(bit uint32) error
	Lock()
	Unlock() error
}

// Component identifies a component type. Values come from
// FactoryNewComponent.
type Component interface {
	table.ElementType
	newStoredPool() storedPool
}

// storedPool is the type-erased view storage keeps of each Pool[T].
type storedPool interface {
	PoolContract
	ElementType() table.ElementType
	emplaceZero(Entity) bool
	view() PoolReader
	Tidy() int
	Clear()
}

type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

// QueryNode decides whether an entity with the given component signature
// matches.
type QueryNode interface {
	Evaluate(signature mask.Mask, storage Storage) bool
}
