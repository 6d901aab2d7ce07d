package sim

import (
	"github.com/pthm-cable/macflip/particle"
	"github.com/pthm-cable/macflip/vecmath"
)

func particleAt(pos, velocity vecmath.Vec3, cell vecmath.Vec3i) particle.Particle {
	return particle.Particle{Position: pos, Velocity: velocity, GridIndex: cell}
}

// SeedCell fills one grid cell with density^3 particles on a
// stratified jittered lattice, each carrying the given initial
// velocity. If the cell already holds at least density^3 particles,
// SeedCell is a no-op; otherwise it tops the cell up to that count,
// matching simulation.cpp's seed_cell, which is idempotent under
// repeated calls during interactive seeding.
func (s *Simulation) SeedCell(cell vecmath.Vec3i, velocity vecmath.Vec3, density int) {
	if !s.grid.InBounds(cell) || density <= 0 {
		return
	}
	target := density * density * density
	existing := s.countParticlesInCell(cell)
	if existing >= target {
		return
	}
	corner := s.cellCorner(cell)
	for i := 0; i < target-existing; i++ {
		pos := corner.Add(s.jitter())
		s.particles.Add(particleAt(pos, velocity, cell))
	}
}

// SeedBox seeds every cell intersecting [start, start+size) with up to
// density^3 jittered particles per cell, keeping only the particles
// that land inside the box itself — cells on the box's boundary get a
// partial fill rather than being fully or not at all seeded.
func (s *Simulation) SeedBox(start, size vecmath.Vec3, density int) {
	end := start.Add(size)
	predicate := func(p vecmath.Vec3) bool {
		return p.X >= start.X && p.X < end.X &&
			p.Y >= start.Y && p.Y < end.Y &&
			p.Z >= start.Z && p.Z < end.Z
	}
	s.seedRegion(start, end, density, predicate)
}

// SeedSphere seeds every cell intersecting the sphere's bounding box,
// keeping only particles that land within radius of center.
func (s *Simulation) SeedSphere(center vecmath.Vec3, radius float64, density int) {
	r2 := radius * radius
	lo := vecmath.Vec3{X: center.X - radius, Y: center.Y - radius, Z: center.Z - radius}
	hi := vecmath.Vec3{X: center.X + radius, Y: center.Y + radius, Z: center.Z + radius}
	predicate := func(p vecmath.Vec3) bool {
		return p.Sub(center).SquaredLength() <= r2
	}
	s.seedRegion(lo, hi, density, predicate)
}

// seedRegion iterates every cell intersecting [lo,hi], generating
// density^3 jittered candidates per cell and keeping only those
// satisfying predicate. Seeded particles start at rest.
func (s *Simulation) seedRegion(lo, hi vecmath.Vec3, density int, predicate func(vecmath.Vec3) bool) {
	if density <= 0 {
		return
	}
	maxIdx := s.maxCellIndex()
	loCell := vecmath.ClampVec3i(s.grid.WorldToCellUnclamped(lo).Floor(), vecmath.Vec3i{}, maxIdx)
	hiCell := vecmath.ClampVec3i(s.grid.WorldToCellUnclamped(hi).Floor(), vecmath.Vec3i{}, maxIdx)
	n := density * density * density
	for z := loCell.Z; z <= hiCell.Z; z++ {
		for y := loCell.Y; y <= hiCell.Y; y++ {
			for x := loCell.X; x <= hiCell.X; x++ {
				cell := vecmath.Vec3i{X: x, Y: y, Z: z}
				corner := s.cellCorner(cell)
				for i := 0; i < n; i++ {
					pos := corner.Add(s.jitter())
					if !predicate(pos) {
						continue
					}
					s.particles.Add(particleAt(pos, vecmath.Vec3{}, cell))
				}
			}
		}
	}
}

func (s *Simulation) jitter() vecmath.Vec3 {
	h := s.cfg.CellSize
	return vecmath.Vec3{X: s.rng.Float64() * h, Y: s.rng.Float64() * h, Z: s.rng.Float64() * h}
}

// countParticlesInCell scans every live particle's current position to
// count how many already fall in cell. Only used at seed time, never
// on the substep hot path.
func (s *Simulation) countParticlesInCell(cell vecmath.Vec3i) int {
	maxIdx := s.maxCellIndex()
	n := 0
	for _, p := range s.particles.All() {
		idx := vecmath.ClampVec3i(s.grid.WorldToCellUnclamped(p.Position).Floor(), vecmath.Vec3i{}, maxIdx)
		if idx == cell {
			n++
		}
	}
	return n
}
