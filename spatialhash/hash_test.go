package spatialhash

import (
	"testing"

	"github.com/pthm-cable/macflip/vecmath"
)

func TestInsertAndAt(t *testing.T) {
	h := New(4, 4, 4)
	h.Insert(7, vecmath.Vec3i{X: 1, Y: 1, Z: 1})
	h.Insert(9, vecmath.Vec3i{X: 1, Y: 1, Z: 1})
	got := h.At(vecmath.Vec3i{X: 1, Y: 1, Z: 1})
	if len(got) != 2 || got[0] != 7 || got[1] != 9 {
		t.Errorf("At: got %v", got)
	}
}

func TestInsertOutOfBoundsIsNoOp(t *testing.T) {
	h := New(2, 2, 2)
	h.Insert(1, vecmath.Vec3i{X: -1, Y: 0, Z: 0})
	h.Insert(2, vecmath.Vec3i{X: 5, Y: 0, Z: 0})
	if h.Count() != 0 {
		t.Errorf("expected 0 inserted, got %d", h.Count())
	}
}

func TestClearEmptiesBuckets(t *testing.T) {
	h := New(2, 2, 2)
	h.Insert(1, vecmath.Vec3i{X: 0, Y: 0, Z: 0})
	h.Clear()
	if h.Count() != 0 {
		t.Errorf("expected 0 after Clear, got %d", h.Count())
	}
	if got := h.At(vecmath.Vec3i{X: 0, Y: 0, Z: 0}); len(got) != 0 {
		t.Errorf("expected empty bucket after Clear, got %v", got)
	}
}

func TestForAllNearbyGathersBoxAndClamps(t *testing.T) {
	h := New(3, 3, 3)
	for z := 0; z < 3; z++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				h.Insert(x+3*(y+3*z), vecmath.Vec3i{X: x, Y: y, Z: z})
			}
		}
	}
	var got []int
	h.ForAllNearby(vecmath.Vec3i{X: 0, Y: 0, Z: 0}, vecmath.Vec3i{X: 1, Y: 1, Z: 1}, vecmath.Vec3i{X: 1, Y: 1, Z: 1}, func(idx int) {
		got = append(got, idx)
	})
	// Center (0,0,0) with back=(1,1,1) clamps to lo=(0,0,0); fwd=(1,1,1)
	// reaches (1,1,1) — an 8-cell box inside the 3x3x3 hash.
	if len(got) != 8 {
		t.Errorf("expected 8 particles in clamped 2x2x2 box, got %d: %v", len(got), got)
	}
}

func TestOccupiedCellsSortedAscending(t *testing.T) {
	h := New(2, 2, 2)
	h.Insert(1, vecmath.Vec3i{X: 1, Y: 0, Z: 0})
	h.Insert(2, vecmath.Vec3i{X: 0, Y: 0, Z: 0})
	occ := h.OccupiedCells()
	if len(occ) != 2 || occ[0] >= occ[1] {
		t.Errorf("expected ascending occupied cells, got %v", occ)
	}
}
