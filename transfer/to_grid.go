package transfer

import (
	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/particle"
	"github.com/pthm-cable/macflip/spatialhash"
	"github.com/pthm-cable/macflip/vecmath"
)

var fullBlock = vecmath.Vec3i{X: 1, Y: 1, Z: 1}

// transferToGrid walks every non-solid cell and, for each of its three
// positive faces, takes a kernel-weighted average of source over the
// particles in the surrounding 3x3x3 block. source returns the value a
// particle contributes for the given face (plain velocity for PIC, the
// affine-corrected velocity for APIC).
func transferToGrid(g *grid.Grid, ps *particle.Store, hash *spatialhash.Hash, source func(p *particle.Particle, faceCenter vecmath.Vec3, axis int) float64) {
	particles := ps.All()
	size := g.Size()
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				idx := vecmath.Vec3i{X: x, Y: y, Z: z}
				cell := g.At(idx)
				if cell.Type == grid.Solid {
					continue
				}
				for axis := 0; axis < 3; axis++ {
					faceCenter := g.FaceCenter(idx, axis)
					var sum, weightSum float64
					hash.ForAllNearby(idx, fullBlock, fullBlock, func(pi int) {
						p := &particles[pi]
						w := Kernel(p.Position.Sub(faceCenter), g.CellSize)
						if w <= 0 {
							return
						}
						sum += w * source(p, faceCenter, axis)
						weightSum += w
					})
					if weightSum < minWeight {
						cell.FacePos = cell.FacePos.WithComponent(axis, 0)
					} else {
						cell.FacePos = cell.FacePos.WithComponent(axis, sum/weightSum)
					}
				}
				if len(hash.At(idx)) > 0 {
					cell.Type = grid.Fluid
				} else {
					cell.Type = grid.Air
				}
			}
		}
	}
}

func toGridPIC(g *grid.Grid, ps *particle.Store, hash *spatialhash.Hash) {
	transferToGrid(g, ps, hash, func(p *particle.Particle, faceCenter vecmath.Vec3, axis int) float64 {
		return p.Velocity.Component(axis)
	})
}

func toGridAPIC(g *grid.Grid, ps *particle.Store, hash *spatialhash.Hash) {
	transferToGrid(g, ps, hash, func(p *particle.Particle, faceCenter vecmath.Vec3, axis int) float64 {
		d := faceCenter.Sub(p.Position)
		affine := vecmath.Vec3{X: p.Cx.Dot(d), Y: p.Cy.Dot(d), Z: p.Cz.Dot(d)}
		return p.Velocity.Component(axis) + affine.Component(axis)
	})
}
