package stockpile

import "fmt"

// Entity is an opaque handle packing an index (low 32 bits) and a generation
// (high 32 bits). Entities are plain values and own nothing.
type Entity uint64

const (
	indexBits      = 32
	indexMask      = 1<<indexBits - 1
	maxEntityIndex = indexMask - 1 // indexMask itself is reserved for Null
)

// Null is the sentinel entity. No summoned entity ever equals Null.
const Null Entity = ^Entity(0)

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<indexBits | uint64(index))
}

// Index returns the slot index of the entity.
func (e Entity) Index() uint32 {
	return uint32(e & indexMask)
}

// Generation returns how many times the slot has been recycled, modulo 2^32.
func (e Entity) Generation() uint32 {
	return uint32(e >> indexBits)
}

// IsNull reports whether e is the Null sentinel.
func (e Entity) IsNull() bool {
	return e == Null
}

// bumped returns the entity with the same index and the next generation.
// Generations wrap on overflow; a handle becomes ambiguous again only after
// 2^32 recycles of the same slot.
func (e Entity) bumped() Entity {
	return newEntity(e.Index(), e.Generation()+1)
}

func (e Entity) String() string {
	if e.IsNull() {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d:%d)", e.Index(), e.Generation())
}
