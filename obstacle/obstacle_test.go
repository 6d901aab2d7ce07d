package obstacle

import (
	"testing"

	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/vecmath"
)

func TestBoxMarksOnlyOverlappingCells(t *testing.T) {
	g := grid.New(5, 5, 5, vecmath.Vec3{}, 1.0)
	Box(g, vecmath.Vec3{X: 1, Y: 1, Z: 1}, vecmath.Vec3{X: 2, Y: 2, Z: 2})
	if g.AtCoords(1, 1, 1).Type != grid.Solid {
		t.Error("expected (1,1,1) inside box to be solid")
	}
	if g.AtCoords(2, 2, 2).Type != grid.Solid {
		t.Error("expected (2,2,2) inside box to be solid")
	}
	if g.AtCoords(0, 0, 0).Type == grid.Solid {
		t.Error("expected (0,0,0) outside box to remain non-solid")
	}
	if g.AtCoords(4, 4, 4).Type == grid.Solid {
		t.Error("expected (4,4,4) outside box to remain non-solid")
	}
}

func TestSphereMarksCellsWithinRadius(t *testing.T) {
	g := grid.New(9, 9, 9, vecmath.Vec3{}, 1.0)
	Sphere(g, vecmath.Vec3{X: 4.5, Y: 4.5, Z: 4.5}, 2.0)
	if g.AtCoords(4, 4, 4).Type != grid.Solid {
		t.Error("expected center cell to be solid")
	}
	if g.AtCoords(0, 0, 0).Type == grid.Solid {
		t.Error("expected far corner to remain non-solid")
	}
}

func TestSphereClampsToGridBounds(t *testing.T) {
	g := grid.New(3, 3, 3, vecmath.Vec3{}, 1.0)
	Sphere(g, vecmath.Vec3{X: 0, Y: 0, Z: 0}, 10.0)
	if g.AtCoords(0, 0, 0).Type != grid.Solid {
		t.Error("expected origin cell to be solid even with an oversized radius")
	}
}
