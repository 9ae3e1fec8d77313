package stockpile

import (
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// EntitySlotAllocator hands out entities and recycles their slots.
//
// All entities ever issued live in one dense slice. Banished entities occupy
// the head, valid ones the tail; boundary separates the two regions. An
// entity at position p is valid iff p >= boundary and the stored handle
// matches exactly (same generation).
type EntitySlotAllocator struct {
	dense     []Entity
	positions []uint32 // entity index -> position in dense
	boundary  int
}

// NewEntitySlotAllocator returns an empty allocator with room for capacity
// entities before it has to grow.
func NewEntitySlotAllocator(capacity int) *EntitySlotAllocator {
	return &EntitySlotAllocator{
		dense:     make([]Entity, 0, capacity),
		positions: make([]uint32, 0, capacity),
	}
}

// Summon returns a recycled entity when one is available, otherwise a fresh
// index with generation 0. It panics with EntityExhaustedError once every
// 32-bit index has been issued and none can be recycled.
func (a *EntitySlotAllocator) Summon() Entity {
	if a.boundary > 0 {
		a.boundary--
		return a.dense[a.boundary]
	}
	index := len(a.dense)
	if uint64(index) > maxEntityIndex {
		panic(EntityExhaustedError{Issued: index})
	}
	en := newEntity(uint32(index), 0)
	a.dense = append(a.dense, en)
	a.positions = append(a.positions, uint32(index))
	return en
}

// Banish invalidates e. Every copy of the old handle stays invalid forever
// (modulo generation wrap-around). Returns false if e was not valid.
func (a *EntitySlotAllocator) Banish(e Entity) bool {
	if !a.IsValid(e) {
		return false
	}
	pos := int(a.positions[e.Index()])
	a.dense[pos] = e.bumped()
	a.swap(pos, a.boundary)
	a.boundary++
	return true
}

// BanishAll invalidates every valid entity.
func (a *EntitySlotAllocator) BanishAll() {
	for i := a.boundary; i < len(a.dense); i++ {
		a.dense[i] = a.dense[i].bumped()
	}
	a.boundary = len(a.dense)
}

// IsValid reports whether e is the live handle for its slot.
func (a *EntitySlotAllocator) IsValid(e Entity) bool {
	index := int(e.Index())
	if e.IsNull() || index >= len(a.positions) {
		return false
	}
	pos := int(a.positions[index])
	return pos >= a.boundary && a.dense[pos] == e
}

// Current returns the live handle occupying index, if any.
func (a *EntitySlotAllocator) Current(index uint32) (Entity, bool) {
	if int(index) >= len(a.positions) {
		return Null, false
	}
	pos := int(a.positions[index])
	if pos < a.boundary {
		return Null, false
	}
	return a.dense[pos], true
}

// Len returns the number of valid entities.
func (a *EntitySlotAllocator) Len() int {
	return len(a.dense) - a.boundary
}

// Capacity returns the number of distinct indices ever issued.
func (a *EntitySlotAllocator) Capacity() int {
	return len(a.dense)
}

// Recyclable returns how many banished slots are waiting to be reused.
func (a *EntitySlotAllocator) Recyclable() int {
	return a.boundary
}

// Reserve grows the backing storage so n more fresh entities can be summoned
// without reallocating.
func (a *EntitySlotAllocator) Reserve(n int) {
	if need := len(a.dense) + n; need > cap(a.dense) {
		dense := make([]Entity, len(a.dense), need)
		copy(dense, a.dense)
		a.dense = dense
		positions := make([]uint32, len(a.positions), need)
		copy(positions, a.positions)
		a.positions = positions
	}
}

// All yields every valid entity. Summoning or banishing while ranging is
// unsafe: both reorder the valid region.
func (a *EntitySlotAllocator) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i := len(a.dense) - 1; i >= a.boundary; i-- {
			if !yield(a.dense[i]) {
				return
			}
		}
	}
}

// Snapshot copies the valid entities into a new slice.
func (a *EntitySlotAllocator) Snapshot() []Entity {
	return iter_util.Collect(a.All())
}

func (a *EntitySlotAllocator) swap(i, j int) {
	if i == j {
		return
	}
	ei, ej := a.dense[i], a.dense[j]
	a.dense[i], a.dense[j] = ej, ei
	a.positions[ei.Index()] = uint32(j)
	a.positions[ej.Index()] = uint32(i)
}
