// Package spatialhash implements a uniform grid spatial hash over
// particle indices. Buckets hold indices into an external particle
// arena rather than pointers or copies, so rebuilding the hash each
// step never invalidates anything held elsewhere.
package spatialhash

import "github.com/pthm-cable/macflip/vecmath"

// Hash buckets particle indices by the grid cell their position falls
// in. It is rebuilt from scratch once per substep by the simulation
// driver (Clear then Insert for every live particle).
type Hash struct {
	nx, ny, nz int
	buckets    [][]int
}

// New allocates a hash covering nx*ny*nz cells. The dimensions should
// match the simulation grid so that a particle's cell index can be used
// directly as a hash key.
func New(nx, ny, nz int) *Hash {
	return &Hash{
		nx: nx, ny: ny, nz: nz,
		buckets: make([][]int, nx*ny*nz),
	}
}

func (h *Hash) inBounds(cell vecmath.Vec3i) bool {
	return cell.X >= 0 && cell.X < h.nx && cell.Y >= 0 && cell.Y < h.ny && cell.Z >= 0 && cell.Z < h.nz
}

func (h *Hash) rawIndex(cell vecmath.Vec3i) int {
	return cell.X + h.nx*(cell.Y+h.ny*cell.Z)
}

// Clear empties every bucket, retaining their underlying capacity so
// the next Insert pass doesn't need to reallocate.
func (h *Hash) Clear() {
	for i := range h.buckets {
		h.buckets[i] = h.buckets[i][:0]
	}
}

// Insert adds particle index idx to the bucket for cell. It is a no-op
// if cell lies outside the hash's bounds.
func (h *Hash) Insert(idx int, cell vecmath.Vec3i) {
	if !h.inBounds(cell) {
		return
	}
	r := h.rawIndex(cell)
	h.buckets[r] = append(h.buckets[r], idx)
}

// At returns the slice of particle indices currently in cell. The
// returned slice aliases the hash's internal storage and must not be
// retained across the next Clear.
func (h *Hash) At(cell vecmath.Vec3i) []int {
	if !h.inBounds(cell) {
		return nil
	}
	return h.buckets[h.rawIndex(cell)]
}

// ForAllNearby calls fn once for every particle index in the inclusive
// box [center-back, center+fwd], clamped to the hash's bounds. back and
// fwd are typically Vec3i{1,1,1} for the 1-cell trilinear kernel
// support used throughout transfer.
func (h *Hash) ForAllNearby(center, back, fwd vecmath.Vec3i, fn func(idx int)) {
	lo := vecmath.ClampVec3i(center.Sub(back), vecmath.Vec3i{}, vecmath.Vec3i{X: h.nx - 1, Y: h.ny - 1, Z: h.nz - 1})
	hi := vecmath.ClampVec3i(center.Add(fwd), vecmath.Vec3i{}, vecmath.Vec3i{X: h.nx - 1, Y: h.ny - 1, Z: h.nz - 1})
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for x := lo.X; x <= hi.X; x++ {
				r := h.rawIndex(vecmath.Vec3i{X: x, Y: y, Z: z})
				for _, idx := range h.buckets[r] {
					fn(idx)
				}
			}
		}
	}
}

// OccupiedCells returns the raw indices of every non-empty bucket, in
// ascending order. Used by diagnostics and tests; not on the hot path.
func (h *Hash) OccupiedCells() []int {
	var out []int
	for i, b := range h.buckets {
		if len(b) > 0 {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the total number of indices currently stored across all
// buckets.
func (h *Hash) Count() int {
	n := 0
	for _, b := range h.buckets {
		n += len(b)
	}
	return n
}
