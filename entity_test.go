package stockpile

import (
	"testing"
)

// Test component types
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

func TestEntityPacking(t *testing.T) {
	tests := []struct {
		name       string
		index      uint32
		generation uint32
	}{
		{"Zero", 0, 0},
		{"Index only", 42, 0},
		{"Generation only", 0, 7},
		{"Both", 123456, 987654},
		{"Max index", maxEntityIndex, 1},
		{"Max generation", 3, ^uint32(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := newEntity(tt.index, tt.generation)
			if en.Index() != tt.index {
				t.Errorf("Index() = %d, want %d", en.Index(), tt.index)
			}
			if en.Generation() != tt.generation {
				t.Errorf("Generation() = %d, want %d", en.Generation(), tt.generation)
			}
			if en.IsNull() {
				t.Errorf("%v reported as null", en)
			}
		})
	}
}

func TestEntityGenerationWraps(t *testing.T) {
	en := newEntity(5, ^uint32(0))
	next := en.bumped()
	if next.Generation() != 0 {
		t.Errorf("Generation after wrap = %d, want 0", next.Generation())
	}
	if next.Index() != 5 {
		t.Errorf("Index after wrap = %d, want 5", next.Index())
	}
}

func TestSummonSequence(t *testing.T) {
	alloc := NewEntitySlotAllocator(0)

	var summoned []Entity
	for i := 0; i < 4; i++ {
		summoned = append(summoned, alloc.Summon())
	}
	for i, en := range summoned {
		if en.Index() != uint32(i) || en.Generation() != 0 {
			t.Errorf("Summon %d = %v, want index %d generation 0", i, en, i)
		}
	}

	if !alloc.Banish(summoned[1]) {
		t.Fatalf("Banish(%v) = false, want true", summoned[1])
	}
	recycled := alloc.Summon()
	if recycled.Index() != 1 || recycled.Generation() != 1 {
		t.Errorf("Recycled = %v, want index 1 generation 1", recycled)
	}
	if alloc.IsValid(summoned[1]) {
		t.Errorf("Stale handle %v still valid", summoned[1])
	}
	if !alloc.IsValid(recycled) {
		t.Errorf("Recycled handle %v not valid", recycled)
	}
}

func TestGenerationalSafety(t *testing.T) {
	alloc := NewEntitySlotAllocator(16)
	live := make([]Entity, 0, 64)
	for i := 0; i < 64; i++ {
		live = append(live, alloc.Summon())
	}

	for round := 0; round < 5; round++ {
		for i := 0; i < len(live); i += 3 {
			old := live[i]
			if !alloc.Banish(old) {
				t.Fatalf("Banish(%v) failed in round %d", old, round)
			}
			if alloc.IsValid(old) {
				t.Fatalf("%v valid after banish", old)
			}
			fresh := alloc.Summon()
			if fresh.Index() != old.Index() {
				t.Fatalf("Expected index %d to be recycled, got %v", old.Index(), fresh)
			}
			if fresh.Generation() <= old.Generation() {
				t.Errorf("Generation did not grow: old %v, new %v", old, fresh)
			}
			live[i] = fresh
		}
	}

	if alloc.Len() != len(live) {
		t.Errorf("Len() = %d, want %d", alloc.Len(), len(live))
	}
	for _, en := range live {
		if !alloc.IsValid(en) {
			t.Errorf("%v should be valid", en)
		}
	}
}

func TestBanishInvalid(t *testing.T) {
	alloc := NewEntitySlotAllocator(0)
	en := alloc.Summon()

	tests := []struct {
		name   string
		target Entity
	}{
		{"Null", Null},
		{"Out of range", newEntity(99, 0)},
		{"Wrong generation", newEntity(en.Index(), 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if alloc.Banish(tt.target) {
				t.Errorf("Banish(%v) = true, want false", tt.target)
			}
			if !alloc.IsValid(en) {
				t.Errorf("Unrelated entity %v invalidated", en)
			}
		})
	}

	if !alloc.Banish(en) {
		t.Fatalf("First banish failed")
	}
	if alloc.Banish(en) {
		t.Errorf("Second banish of %v succeeded", en)
	}
	if alloc.Recyclable() != 1 {
		t.Errorf("Recyclable() = %d, want 1", alloc.Recyclable())
	}
}

func TestBanishAll(t *testing.T) {
	alloc := NewEntitySlotAllocator(0)
	var entities []Entity
	for i := 0; i < 10; i++ {
		entities = append(entities, alloc.Summon())
	}
	alloc.Banish(entities[3])

	alloc.BanishAll()

	if alloc.Len() != 0 {
		t.Errorf("Len() = %d after BanishAll, want 0", alloc.Len())
	}
	for _, en := range entities {
		if alloc.IsValid(en) {
			t.Errorf("%v valid after BanishAll", en)
		}
	}

	seen := make(map[uint32]Entity)
	for i := 0; i < 10; i++ {
		en := alloc.Summon()
		if en.Generation() == 0 {
			t.Errorf("Summon after BanishAll returned fresh generation: %v", en)
		}
		seen[en.Index()] = en
	}
	if len(seen) != 10 {
		t.Errorf("Recycled %d distinct indices, want 10", len(seen))
	}
	if got := alloc.Summon(); got.Index() != 10 || got.Generation() != 0 {
		t.Errorf("Summon past recycled region = %v, want index 10 generation 0", got)
	}
}

func TestAllocatorSnapshot(t *testing.T) {
	alloc := NewEntitySlotAllocator(0)
	a, b, c := alloc.Summon(), alloc.Summon(), alloc.Summon()
	alloc.Banish(b)

	got := make(map[Entity]bool)
	for _, en := range alloc.Snapshot() {
		got[en] = true
	}
	if len(got) != 2 || !got[a] || !got[c] {
		t.Errorf("Snapshot() = %v, want {%v %v}", got, a, c)
	}

	current, ok := alloc.Current(b.Index())
	if ok {
		t.Errorf("Current(%d) = %v, want none", b.Index(), current)
	}
	current, ok = alloc.Current(a.Index())
	if !ok || current != a {
		t.Errorf("Current(%d) = %v, %v, want %v", a.Index(), current, ok, a)
	}
}
