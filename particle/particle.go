// Package particle defines the fluid marker particle and the dense
// arena that stores them.
package particle

import "github.com/pthm-cable/macflip/vecmath"

// Particle is a single FLIP/PIC/APIC marker: a position, a velocity,
// and (for APIC) the three rows of its affine velocity matrix C, plus
// the grid cell it was last hashed into.
type Particle struct {
	Position   vecmath.Vec3
	Velocity   vecmath.Vec3
	Cx, Cy, Cz vecmath.Vec3
	GridIndex  vecmath.Vec3i
}

// Store is a dense arena of particles, indexed by position. Indices
// into Store are stable across a Clear+Insert spatial-hash rebuild
// (they are never invalidated by hash resizing), but a RemoveAt call
// invalidates the index of whichever particle was swapped into the
// removed slot — callers that hold onto raw indices across a RemoveAt
// must re-derive them.
type Store struct {
	particles []Particle
}

// NewStore returns an empty particle store with capacity pre-allocated
// for capacity particles.
func NewStore(capacity int) *Store {
	return &Store{particles: make([]Particle, 0, capacity)}
}

// Len returns the number of live particles.
func (s *Store) Len() int {
	return len(s.particles)
}

// At returns a pointer to the particle at index i.
func (s *Store) At(i int) *Particle {
	return &s.particles[i]
}

// All returns the live particle slice. Callers must not retain it
// across an Add or RemoveAt, which may reallocate or reorder it.
func (s *Store) All() []Particle {
	return s.particles
}

// Add appends a new particle and returns its index.
func (s *Store) Add(p Particle) int {
	s.particles = append(s.particles, p)
	return len(s.particles) - 1
}

// RemoveAt deletes the particle at index i by swapping the last
// particle into its slot and truncating, matching the teacher's
// swap-to-compact idiom for dense particle arrays. It is O(1) but does
// not preserve particle order, and it reassigns whatever particle used
// to be last to index i.
func (s *Store) RemoveAt(i int) {
	last := len(s.particles) - 1
	s.particles[i] = s.particles[last]
	s.particles = s.particles[:last]
}

// Reset empties the store without releasing its backing array.
func (s *Store) Reset() {
	s.particles = s.particles[:0]
}
