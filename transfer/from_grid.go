package transfer

import (
	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/particle"
)

func fromGridPIC(g *grid.Grid, ps *particle.Store) {
	n := ps.Len()
	for i := 0; i < n; i++ {
		p := ps.At(i)
		t := localT(g, p)
		p.Velocity = interpolateVelocity(g, p.GridIndex, t)
	}
}

func fromGridFLIP(g, oldGrid *grid.Grid, ps *particle.Store, blend float64) {
	n := ps.Len()
	for i := 0; i < n; i++ {
		p := ps.At(i)
		t := localT(g, p)
		newVelocity := interpolateVelocity(g, p.GridIndex, t)
		oldVelocity := interpolateVelocity(oldGrid, p.GridIndex, t)
		p.Velocity = newVelocity.Add(p.Velocity.Sub(oldVelocity).Scale(blend))
	}
}

func fromGridAPIC(g *grid.Grid, ps *particle.Store, cellSize float64) {
	n := ps.Len()
	for i := 0; i < n; i++ {
		p := ps.At(i)
		t := localT(g, p)
		p.Velocity = interpolateVelocity(g, p.GridIndex, t)
		p.Cx = faceGradient(g, p.GridIndex, t, 0, cellSize)
		p.Cy = faceGradient(g, p.GridIndex, t, 1, cellSize)
		p.Cz = faceGradient(g, p.GridIndex, t, 2, cellSize)
	}
}
