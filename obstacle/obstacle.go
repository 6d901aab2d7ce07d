// Package obstacle marks primitive-shaped regions of a grid as solid,
// standing in for the mesh voxelization the original tool performed
// (out of scope here — mesh extraction is an explicit non-goal) while
// still exercising the same solid-cell machinery the pressure solver
// and transfer code branch on.
package obstacle

import (
	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/vecmath"
)

// Box marks every cell whose center lies within [start, start+size) as
// solid.
func Box(g *grid.Grid, start, size vecmath.Vec3) {
	forEachOverlappingCell(g, start, start.Add(size), func(idx vecmath.Vec3i) {
		center := g.CellCenter(idx)
		if center.X >= start.X && center.X < start.X+size.X &&
			center.Y >= start.Y && center.Y < start.Y+size.Y &&
			center.Z >= start.Z && center.Z < start.Z+size.Z {
			g.At(idx).Type = grid.Solid
		}
	})
}

// Sphere marks every cell whose center lies within radius of center as
// solid.
func Sphere(g *grid.Grid, center vecmath.Vec3, radius float64) {
	lo := vecmath.Vec3{X: center.X - radius, Y: center.Y - radius, Z: center.Z - radius}
	hi := vecmath.Vec3{X: center.X + radius, Y: center.Y + radius, Z: center.Z + radius}
	r2 := radius * radius
	forEachOverlappingCell(g, lo, hi, func(idx vecmath.Vec3i) {
		c := g.CellCenter(idx)
		if c.Sub(center).SquaredLength() <= r2 {
			g.At(idx).Type = grid.Solid
		}
	})
}

// forEachOverlappingCell calls fn for every cell index whose bounding
// box could intersect [lo, hi], clamped to the grid.
func forEachOverlappingCell(g *grid.Grid, lo, hi vecmath.Vec3, fn func(idx vecmath.Vec3i)) {
	loCell := g.WorldToCellUnclamped(lo).Floor()
	hiCell := g.WorldToCellUnclamped(hi).Floor()
	size := g.Size()
	bound := vecmath.Vec3i{X: size.X - 1, Y: size.Y - 1, Z: size.Z - 1}
	loCell = vecmath.ClampVec3i(loCell, vecmath.Vec3i{}, bound)
	hiCell = vecmath.ClampVec3i(hiCell, vecmath.Vec3i{}, bound)
	for z := loCell.Z; z <= hiCell.Z; z++ {
		for y := loCell.Y; y <= hiCell.Y; y++ {
			for x := loCell.X; x <= hiCell.X; x++ {
				fn(vecmath.Vec3i{X: x, Y: y, Z: z})
			}
		}
	}
}
