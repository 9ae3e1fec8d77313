package stockpile

import (
	"iter"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
)

// Group keeps two or more pools co-arranged: the entities present in every
// pool occupy positions [0, Len()) of each pool, in the same order. Iterating
// the group is a walk over that shared prefix with no membership checks.
//
// A group holds plain references to its pools and must not outlive them.
// Storage owns both and keeps them together.
type Group struct {
	pools     []PoolContract
	length    int
	signature mask.Mask
}

// NewGroup builds a group over pools and harmonizes it with their current
// contents. At least two pools are required.
func NewGroup(pools ...PoolContract) (*Group, error) {
	if len(pools) < 2 {
		return nil, GroupSizeError{Count: len(pools)}
	}
	g := &Group{pools: pools}
	g.Harmonize()
	return g, nil
}

// Include moves e into the shared prefix. It must be called exactly once,
// right after e starts being present in every pool.
func (g *Group) Include(e Entity) {
	for _, p := range g.pools {
		p.Swap(p.IndexOf(e), g.length)
	}
	g.length++
}

// Exclude moves e out of the shared prefix. It must be called exactly once,
// while e is still present in every pool and just before it stops being so.
func (g *Group) Exclude(e Entity) {
	g.length--
	for _, p := range g.pools {
		p.Swap(p.IndexOf(e), g.length)
	}
}

// Harmonize scans the smallest pool's unsorted region front to back and
// includes every entity present in all pools. It returns how many entities
// were included.
//
// The scan must move forward: Include swaps the slot at Len() into the
// current position, and that slot has already been visited.
func (g *Group) Harmonize() int {
	pivot := g.pivot()
	included := 0
	for i := g.length; i < pivot.Size(); i++ {
		e := pivot.EntityAt(i)
		if g.matches(e) {
			g.Include(e)
			included++
		}
	}
	return included
}

func (g *Group) pivot() PoolContract {
	pivot := g.pools[0]
	for _, p := range g.pools[1:] {
		if p.Size() < pivot.Size() {
			pivot = p
		}
	}
	return pivot
}

func (g *Group) matches(e Entity) bool {
	for _, p := range g.pools {
		if !p.Contains(e) {
			return false
		}
	}
	return true
}

// Len returns the number of entities present in every pool.
func (g *Group) Len() int {
	return g.length
}

// Contains reports whether e sits in the shared prefix.
func (g *Group) Contains(e Entity) bool {
	pos := g.pools[0].IndexOf(e)
	return pos >= 0 && pos < g.length
}

// Owns reports whether p, or the pool behind view p, is one of the group's
// pools.
func (g *Group) Owns(p PoolReader) bool {
	if v, ok := p.(interface{ contract() PoolContract }); ok {
		p = v.contract()
	}
	for _, own := range g.pools {
		if PoolReader(own) == p {
			return true
		}
	}
	return false
}

// Pools returns read-only handles to the participating pools. Storage-owned
// pools come back as views.
func (g *Group) Pools() []PoolReader {
	out := make([]PoolReader, len(g.pools))
	for i, p := range g.pools {
		if sp, ok := p.(interface{ view() PoolReader }); ok {
			out[i] = sp.view()
			continue
		}
		out[i] = p
	}
	return out
}

// Signature returns the component mask of the group; it is empty for groups
// built directly with NewGroup.
func (g *Group) Signature() mask.Mask {
	return g.signature
}

// All yields the dense position and entity of every grouped entity.
func (g *Group) All() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		p := g.pools[0]
		for i := 0; i < g.length; i++ {
			if !yield(i, p.EntityAt(i)) {
				return
			}
		}
	}
}

// Entities yields the grouped entities.
func (g *Group) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, e := range g.All() {
			if !yield(e) {
				return
			}
		}
	}
}

// Snapshot copies the grouped entities into a new slice.
func (g *Group) Snapshot() []Entity {
	return iter_util.Collect(g.Entities())
}

// Each2 calls fn for every grouped entity with its components from a and b.
// Both pools must belong to g.
func Each2[A, B any](g *Group, a PoolOf[A], b PoolOf[B], fn func(Entity, *A, *B)) error {
	pa, pb := a.raw(), b.raw()
	if !g.Owns(pa) || !g.Owns(pb) {
		return GroupMembershipError{}
	}
	for i := 0; i < g.length; i++ {
		fn(pa.entities[i], pa.GetAt(i), pb.GetAt(i))
	}
	return nil
}

// Each3 is Each2 for three pools.
func Each3[A, B, C any](g *Group, a PoolOf[A], b PoolOf[B], c PoolOf[C], fn func(Entity, *A, *B, *C)) error {
	pa, pb, pc := a.raw(), b.raw(), c.raw()
	if !g.Owns(pa) || !g.Owns(pb) || !g.Owns(pc) {
		return GroupMembershipError{}
	}
	for i := 0; i < g.length; i++ {
		fn(pa.entities[i], pa.GetAt(i), pb.GetAt(i), pc.GetAt(i))
	}
	return nil
}
