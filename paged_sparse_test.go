package stockpile

import (
	"testing"
)

func TestPagedSparseIndexBasics(t *testing.T) {
	s := NewPagedSparseIndex(8)

	if s.Contains(3) {
		t.Fatalf("Empty index contains 3")
	}
	if _, ok := s.Lookup(1000); ok {
		t.Fatalf("Lookup on missing page succeeded")
	}

	s.ReserveFor(3)
	if s.Pages() != 1 {
		t.Errorf("Pages() = %d after first reserve, want 1", s.Pages())
	}
	if s.Contains(3) {
		t.Errorf("Reserved slot should still be null")
	}
	s.Set(3, 42)
	if !s.Contains(3) || s.Get(3) != 42 {
		t.Errorf("Get(3) = %d, want 42", s.Get(3))
	}

	s.ReserveFor(7)
	if s.Pages() != 1 {
		t.Errorf("Index 7 should share page with 3, Pages() = %d", s.Pages())
	}

	s.Erase(3)
	if s.Contains(3) {
		t.Errorf("Contains(3) after Erase")
	}
	if s.Pages() != 1 {
		t.Errorf("Erase must not free pages, Pages() = %d", s.Pages())
	}
}

func TestPagedSparseIndexSparseKeys(t *testing.T) {
	s := NewPagedSparseIndex(16)
	keys := []uint32{0, 1 << 10, 1 << 20, 1<<20 + 5}
	for i, k := range keys {
		s.ReserveFor(k)
		s.Set(k, uint32(i))
	}
	if s.Pages() != 3 {
		t.Errorf("Pages() = %d, want 3", s.Pages())
	}
	for i, k := range keys {
		slot, ok := s.Lookup(k)
		if !ok || slot != uint32(i) {
			t.Errorf("Lookup(%d) = %d, %v, want %d", k, slot, ok, i)
		}
	}
	if s.Contains(1<<20 + 6) {
		t.Errorf("Neighbouring slot reported present")
	}
}

func TestPagedSparseIndexTidy(t *testing.T) {
	tests := []struct {
		name      string
		keep      []uint32
		drop      []uint32
		wantFreed int
		wantPages int
	}{
		{"Nothing to free", []uint32{1, 40}, nil, 0, 2},
		{"Free trailing page", []uint32{1}, []uint32{40}, 1, 1},
		{"Free leading page", []uint32{40}, []uint32{1}, 1, 1},
		{"Free all", nil, []uint32{1, 40, 90}, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPagedSparseIndex(16)
			for _, k := range append(append([]uint32{}, tt.keep...), tt.drop...) {
				s.ReserveFor(k)
				s.Set(k, k)
			}
			for _, k := range tt.drop {
				s.Erase(k)
			}
			if freed := s.Tidy(); freed != tt.wantFreed {
				t.Errorf("Tidy() = %d, want %d", freed, tt.wantFreed)
			}
			if s.Pages() != tt.wantPages {
				t.Errorf("Pages() = %d, want %d", s.Pages(), tt.wantPages)
			}
			for _, k := range tt.keep {
				if !s.Contains(k) || s.Get(k) != k {
					t.Errorf("Kept key %d lost after Tidy", k)
				}
			}
			for _, k := range tt.drop {
				if s.Contains(k) {
					t.Errorf("Dropped key %d still present", k)
				}
			}
		})
	}
}

func TestPagedSparseIndexRejectsBadPageSize(t *testing.T) {
	for _, size := range []int{0, -4, 3, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewPagedSparseIndex(%d) did not panic", size)
				}
			}()
			NewPagedSparseIndex(size)
		}()
	}
}
