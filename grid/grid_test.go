package grid

import (
	"testing"

	"github.com/pthm-cable/macflip/vecmath"
)

func TestNewAllAir(t *testing.T) {
	g := New(2, 2, 2, vecmath.Vec3{}, 1.0)
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				if c := g.AtCoords(x, y, z); c.Type != Air {
					t.Fatalf("expected Air at (%d,%d,%d), got %v", x, y, z, c.Type)
				}
			}
		}
	}
}

func TestInBounds(t *testing.T) {
	g := New(3, 4, 5, vecmath.Vec3{}, 1.0)
	if !g.InBounds(vecmath.Vec3i{X: 0, Y: 0, Z: 0}) {
		t.Error("origin should be in bounds")
	}
	if !g.InBounds(vecmath.Vec3i{X: 2, Y: 3, Z: 4}) {
		t.Error("top corner should be in bounds")
	}
	if g.InBounds(vecmath.Vec3i{X: 3, Y: 0, Z: 0}) {
		t.Error("x=3 should be out of bounds for NX=3")
	}
	if g.InBounds(vecmath.Vec3i{X: -1, Y: 0, Z: 0}) {
		t.Error("negative index should be out of bounds")
	}
}

func TestCellAndTypeOutOfGridIsSolid(t *testing.T) {
	g := New(2, 2, 2, vecmath.Vec3{}, 1.0)
	_, ct := g.CellAndType(vecmath.Vec3i{X: -1, Y: 0, Z: 0})
	if ct != Solid {
		t.Errorf("out-of-grid cell type: got %v, want Solid", ct)
	}
}

func TestNegativeFaceReadsNeighborPositiveFace(t *testing.T) {
	g := New(3, 1, 1, vecmath.Vec3{}, 1.0)
	g.AtCoords(0, 0, 0).FacePos.X = 5
	if got := g.NegativeFace(vecmath.Vec3i{X: 1, Y: 0, Z: 0}, 0); got != 5 {
		t.Errorf("NegativeFace: got %v, want 5", got)
	}
	if got := g.NegativeFace(vecmath.Vec3i{X: 0, Y: 0, Z: 0}, 0); got != 0 {
		t.Errorf("NegativeFace at grid boundary: got %v, want 0", got)
	}
}

func TestZeroBoundaryFaces(t *testing.T) {
	g := New(2, 2, 2, vecmath.Vec3{}, 1.0)
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				c := g.AtCoords(x, y, z)
				c.FacePos = vecmath.Vec3{X: 1, Y: 1, Z: 1}
			}
		}
	}
	g.ZeroBoundaryFaces()
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			if got := g.AtCoords(1, y, z).FacePos.X; got != 0 {
				t.Errorf("expected +x boundary face zeroed at (1,%d,%d), got %v", y, z, got)
			}
			if got := g.AtCoords(0, y, z).FacePos.X; got != 1 {
				t.Errorf("non-boundary +x face should be untouched at (0,%d,%d), got %v", y, z, got)
			}
		}
	}
	for z := 0; z < 2; z++ {
		for x := 0; x < 2; x++ {
			if got := g.AtCoords(x, 1, z).FacePos.Y; got != 0 {
				t.Errorf("expected +y boundary face zeroed at (%d,1,%d), got %v", x, z, got)
			}
		}
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := g.AtCoords(x, y, 1).FacePos.Z; got != 0 {
				t.Errorf("expected +z boundary face zeroed at (%d,%d,1), got %v", x, y, got)
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := New(2, 2, 2, vecmath.Vec3{}, 1.0)
	g.AtCoords(0, 0, 0).Type = Fluid
	g.AtCoords(0, 0, 0).FacePos.X = 3
	clone := g.Clone()
	clone.AtCoords(0, 0, 0).FacePos.X = 99
	if g.AtCoords(0, 0, 0).FacePos.X != 3 {
		t.Error("mutating clone should not affect original")
	}
	if clone.AtCoords(0, 0, 0).Type != Fluid {
		t.Error("clone should carry over cell type")
	}
}

func TestCloneIntoCopiesDimensionsAndData(t *testing.T) {
	src := New(2, 2, 2, vecmath.Vec3{X: 1, Y: 2, Z: 3}, 0.5)
	src.AtCoords(1, 1, 1).Type = Solid
	dst := New(2, 2, 2, vecmath.Vec3{}, 1.0)
	CloneInto(dst, src)
	if dst.CellSize != 0.5 || dst.Offset != src.Offset {
		t.Error("CloneInto should copy offset and cell size")
	}
	if dst.AtCoords(1, 1, 1).Type != Solid {
		t.Error("CloneInto should copy cell data")
	}
}

func TestCellCenterAndFaceCenter(t *testing.T) {
	g := New(4, 4, 4, vecmath.Vec3{X: 0, Y: 0, Z: 0}, 2.0)
	center := g.CellCenter(vecmath.Vec3i{X: 0, Y: 0, Z: 0})
	want := vecmath.Vec3{X: 1, Y: 1, Z: 1}
	if center != want {
		t.Errorf("CellCenter: got %v, want %v", center, want)
	}
	face := g.FaceCenter(vecmath.Vec3i{X: 0, Y: 0, Z: 0}, 0)
	if face.X != 2 {
		t.Errorf("FaceCenter along X: got %v, want X=2", face.X)
	}
}

func TestWorldToCellUnclamped(t *testing.T) {
	g := New(4, 4, 4, vecmath.Vec3{X: -2, Y: 0, Z: 0}, 0.5)
	got := g.WorldToCellUnclamped(vecmath.Vec3{X: -1, Y: 1, Z: 2})
	want := vecmath.Vec3{X: 2, Y: 2, Z: 4}
	if got != want {
		t.Errorf("WorldToCellUnclamped: got %v, want %v", got, want)
	}
}
