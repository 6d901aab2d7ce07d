package pressure

import (
	"math"
	"testing"

	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/vecmath"
)

func allFluidCube(n int) *grid.Grid {
	g := grid.New(n, n, n, vecmath.Vec3{}, 1.0)
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				g.AtCoords(x, y, z).Type = grid.Fluid
			}
		}
	}
	return g
}

// Invariant 3: after projection on a fluid-only grid with rho=1 and no
// solids, discrete divergence in every fluid cell is within tolerance.
func TestProjectionDrivesResidualToZero(t *testing.T) {
	g := allFluidCube(4)
	size := g.Size()
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				idx := vecmath.Vec3i{X: x, Y: y, Z: z}
				g.At(idx).FacePos = vecmath.Vec3{
					X: 0.1 * float64(x+1),
					Y: 0.05 * float64(y+1),
					Z: -0.02 * float64(z+1),
				}
			}
		}
	}
	g.ZeroBoundaryFaces()

	dt, density := 0.01, 1.0
	sys := BuildSystem(g, dt, density)
	cfg := DefaultConfig()
	result := sys.Solve(cfg)
	if !result.Converged {
		t.Fatalf("solver did not converge: residual=%v iterations=%v", result.Residual, result.Iterations)
	}
	sys.ApplyPressure(result.Pressure)

	const tol = 1e-6
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				idx := vecmath.Vec3i{X: x, Y: y, Z: z}
				b := computeB(g, idx, g.CellSize)
				if math.Abs(b) > tol*10 {
					t.Errorf("residual divergence at %v: got %v, want <= %v", idx, b, tol*10)
				}
			}
		}
	}
}

// Invariant 5: solid-cell velocities are never modified by ApplyPressure.
func TestApplyPressureNeverTouchesSolidCells(t *testing.T) {
	g := allFluidCube(4)
	solidIdx := vecmath.Vec3i{X: 1, Y: 1, Z: 1}
	g.At(solidIdx).Type = grid.Solid
	want := vecmath.Vec3{X: 7, Y: 8, Z: 9}
	g.At(solidIdx).FacePos = want

	sys := BuildSystem(g, 0.01, 1.0)
	result := sys.Solve(DefaultConfig())
	sys.ApplyPressure(result.Pressure)

	got := g.At(solidIdx).FacePos
	if got != want {
		t.Errorf("solid cell face velocity changed: got %v, want %v", got, want)
	}
}

// Faces adjacent to a solid cell are clamped to zero after projection.
func TestApplyPressureZeroesFacesTouchingSolid(t *testing.T) {
	g := allFluidCube(4)
	solidIdx := vecmath.Vec3i{X: 2, Y: 1, Z: 1}
	g.At(solidIdx).Type = grid.Solid
	neighborIdx := vecmath.Vec3i{X: 1, Y: 1, Z: 1}
	g.At(neighborIdx).FacePos.X = 5

	sys := BuildSystem(g, 0.01, 1.0)
	result := sys.Solve(DefaultConfig())
	sys.ApplyPressure(result.Pressure)

	if got := g.At(neighborIdx).FacePos.X; got != 0 {
		t.Errorf("face touching solid neighbor: got %v, want 0", got)
	}
}

func TestBuildSystemSkipsSolidCellsAsFluidRows(t *testing.T) {
	g := allFluidCube(3)
	g.At(vecmath.Vec3i{X: 1, Y: 1, Z: 1}).Type = grid.Solid
	sys := BuildSystem(g, 0.01, 1.0)
	if sys.NumFluidCells() != 26 {
		t.Errorf("NumFluidCells: got %d, want 26", sys.NumFluidCells())
	}
}

func TestSolveNoFluidCellsIsTrivial(t *testing.T) {
	g := grid.New(2, 2, 2, vecmath.Vec3{}, 1.0)
	sys := BuildSystem(g, 0.01, 1.0)
	result := sys.Solve(DefaultConfig())
	if !result.Converged || result.Iterations != 0 {
		t.Errorf("expected trivial convergence with no fluid cells, got %+v", result)
	}
}
