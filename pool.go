package stockpile

import (
	"iter"
	"slices"
	"unsafe"

	"github.com/TheBitDrifter/table"
)

var _ PoolContract = &Pool[struct{}]{}

// Pool stores every instance of one component type as a sparse set: a paged
// sparse index from entity index to dense position and two index-aligned
// dense slices of entities and values.
//
// Zero-sized component types (tags) never allocate the value slice.
//
// Erase moves the last element into the erased slot, so dense positions are
// not stable across erases. Mutating a pool while ranging over it may skip or
// repeat elements.
type Pool[T any] struct {
	sparse      *PagedSparseIndex
	entities    []Entity
	components  []T
	tag         bool
	zero        T
	elementType table.ElementType
}

// NewPool returns an empty pool using the page size from Config.
func NewPool[T any]() *Pool[T] {
	return newPool[T](nil)
}

func newPool[T any](et table.ElementType) *Pool[T] {
	var zero T
	return &Pool[T]{
		sparse:      NewPagedSparseIndex(Config.pageSize),
		tag:         unsafe.Sizeof(zero) == 0,
		elementType: et,
	}
}

// Contains reports whether e currently has a component in the pool.
func (p *Pool[T]) Contains(e Entity) bool {
	slot, ok := p.sparse.Lookup(e.Index())
	return ok && p.entities[slot] == e
}

// IndexOf returns the dense position of e, or -1.
func (p *Pool[T]) IndexOf(e Entity) int {
	slot, ok := p.sparse.Lookup(e.Index())
	if !ok || p.entities[slot] != e {
		return -1
	}
	return int(slot)
}

// Emplace attaches value to e. It is a no-op returning false when e already
// has a component here. A stale generation of e's index is overwritten in
// place: e takes over its dense slot.
func (p *Pool[T]) Emplace(e Entity, value T) bool {
	slot, ok := p.sparse.Lookup(e.Index())
	if ok {
		if p.entities[slot] == e {
			return false
		}
		p.replace(int(slot), e, value)
		return true
	}
	p.push(e, value)
	return true
}

func (p *Pool[T]) emplaceZero(e Entity) bool {
	var zero T
	return p.Emplace(e, zero)
}

// EmplaceFunc attaches the value produced by construct. If construct fails
// the pool is left untouched and the error is returned.
func (p *Pool[T]) EmplaceFunc(e Entity, construct func() (T, error)) (bool, error) {
	slot, stale := p.sparse.Lookup(e.Index())
	if stale && p.entities[slot] == e {
		return false, nil
	}
	value, err := construct()
	if err != nil {
		return false, err
	}
	if stale {
		p.replace(int(slot), e, value)
	} else {
		p.push(e, value)
	}
	return true, nil
}

func (p *Pool[T]) replace(pos int, e Entity, value T) {
	p.entities[pos] = e
	if !p.tag {
		p.components[pos] = value
	}
}

// push grows every backing store before committing anything, so a failed
// allocation leaves the pool as it was.
func (p *Pool[T]) push(e Entity, value T) {
	p.sparse.ReserveFor(e.Index())
	if !p.tag {
		p.components = slices.Grow(p.components, 1)
	}
	p.entities = slices.Grow(p.entities, 1)

	if !p.tag {
		p.components = append(p.components, value)
	}
	p.entities = append(p.entities, e)
	p.sparse.Set(e.Index(), uint32(len(p.entities)-1))
}

// Erase detaches e using swap-and-pop. Returns false if e was absent.
func (p *Pool[T]) Erase(e Entity) bool {
	pos := p.IndexOf(e)
	if pos < 0 {
		return false
	}
	last := len(p.entities) - 1
	if pos != last {
		moved := p.entities[last]
		p.entities[pos] = moved
		if !p.tag {
			p.components[pos] = p.components[last]
		}
		p.sparse.Set(moved.Index(), uint32(pos))
	}
	p.entities = p.entities[:last]
	if !p.tag {
		p.components[last] = p.zero
		p.components = p.components[:last]
	}
	p.sparse.Erase(e.Index())
	return true
}

// Get returns the component of e without checking membership. Calling it for
// an entity the pool does not contain is a programming error.
func (p *Pool[T]) Get(e Entity) *T {
	if p.tag {
		return &p.zero
	}
	return &p.components[p.sparse.Get(e.Index())]
}

// At is the checked form of Get.
func (p *Pool[T]) At(e Entity) (*T, error) {
	pos := p.IndexOf(e)
	if pos < 0 {
		return nil, EntityNotFoundError{Entity: e, ElementType: p.elementType}
	}
	return p.GetAt(pos), nil
}

// GetAt returns the component stored at dense position pos.
func (p *Pool[T]) GetAt(pos int) *T {
	if p.tag {
		return &p.zero
	}
	return &p.components[pos]
}

// Patch applies fn to the component of e. Returns false if e is absent.
func (p *Pool[T]) Patch(e Entity, fn func(*T)) bool {
	pos := p.IndexOf(e)
	if pos < 0 {
		return false
	}
	fn(p.GetAt(pos))
	return true
}

// Size returns the number of stored components.
func (p *Pool[T]) Size() int {
	return len(p.entities)
}

// EntityAt returns the entity stored at dense position pos.
func (p *Pool[T]) EntityAt(pos int) Entity {
	return p.entities[pos]
}

// Swap exchanges two dense positions and keeps the sparse index in sync.
func (p *Pool[T]) Swap(a, b int) {
	if a == b {
		return
	}
	ea, eb := p.entities[a], p.entities[b]
	p.entities[a], p.entities[b] = eb, ea
	if !p.tag {
		p.components[a], p.components[b] = p.components[b], p.components[a]
	}
	p.sparse.Set(ea.Index(), uint32(b))
	p.sparse.Set(eb.Index(), uint32(a))
}

// Entities returns the dense entity slice. It is owned by the pool.
func (p *Pool[T]) Entities() []Entity {
	return p.entities
}

// Components returns the dense value slice, index-aligned with Entities. It
// is nil for tag pools.
func (p *Pool[T]) Components() []T {
	return p.components
}

// All yields each entity with a pointer to its component in dense order.
// The sequence may be ranged over any number of times.
func (p *Pool[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := 0; i < len(p.entities); i++ {
			if !yield(p.entities[i], p.GetAt(i)) {
				return
			}
		}
	}
}

// Tag reports whether T is zero-sized and no values are stored.
func (p *Pool[T]) Tag() bool {
	return p.tag
}

// ElementType returns the component type key the pool was registered under,
// or nil for pools created with NewPool.
func (p *Pool[T]) ElementType() table.ElementType {
	return p.elementType
}

// Reserve grows the dense slices to hold n more components.
func (p *Pool[T]) Reserve(n int) {
	p.entities = slices.Grow(p.entities, n)
	if !p.tag {
		p.components = slices.Grow(p.components, n)
	}
}

// Clear removes every component. Sparse pages stay allocated until Tidy.
func (p *Pool[T]) Clear() {
	for _, e := range p.entities {
		p.sparse.Erase(e.Index())
	}
	p.entities = p.entities[:0]
	if !p.tag {
		clear(p.components)
		p.components = p.components[:0]
	}
}

// Tidy releases empty sparse pages and returns how many were freed.
func (p *Pool[T]) Tidy() int {
	return p.sparse.Tidy()
}

func (p *Pool[T]) raw() *Pool[T] {
	return p
}

func (p *Pool[T]) view() PoolReader {
	return PoolView[T]{pool: p}
}
