package transfer

import (
	"math"
	"testing"

	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/particle"
	"github.com/pthm-cable/macflip/spatialhash"
	"github.com/pthm-cable/macflip/vecmath"
)

func TestKernelPeakAndSupport(t *testing.T) {
	if got := Kernel(vecmath.Vec3{}, 1.0); got != 1 {
		t.Errorf("Kernel at d=0: got %v, want 1", got)
	}
	if got := Kernel(vecmath.Vec3{X: 0.5}, 1.0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Kernel at d=0.5h: got %v, want 0.5", got)
	}
	if got := Kernel(vecmath.Vec3{X: 1.5}, 1.0); got != 0 {
		t.Errorf("Kernel beyond support: got %v, want 0", got)
	}
}

// buildUniformField fills an n x n x n grid with one particle per cell
// center, all carrying the same velocity, and hashes them. Used to
// probe transfer behavior away from any boundary effects.
func buildUniformField(n int, v vecmath.Vec3) (*grid.Grid, *particle.Store, *spatialhash.Hash) {
	g := grid.New(n, n, n, vecmath.Vec3{}, 1.0)
	ps := particle.NewStore(n * n * n)
	hash := spatialhash.New(n, n, n)
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				idx := vecmath.Vec3i{X: x, Y: y, Z: z}
				pos := g.CellCenter(idx)
				i := ps.Add(particle.Particle{Position: pos, Velocity: v, GridIndex: idx})
				hash.Insert(i, idx)
			}
		}
	}
	return g, ps, hash
}

func TestToGridPICUniformFieldInterior(t *testing.T) {
	v := vecmath.Vec3{X: 2, Y: -1, Z: 3}
	g, ps, hash := buildUniformField(5, v)
	toGridPIC(g, ps, hash)
	interior := vecmath.Vec3i{X: 2, Y: 2, Z: 2}
	face := g.At(interior).FacePos
	if math.Abs(face.X-v.X) > 1e-9 || math.Abs(face.Y-v.Y) > 1e-9 || math.Abs(face.Z-v.Z) > 1e-9 {
		t.Errorf("interior face velocity after P2G: got %v, want %v", face, v)
	}
	if g.At(interior).Type != grid.Fluid {
		t.Errorf("cell with particles should become Fluid")
	}
}

func TestPICRoundTripUniformFieldInterior(t *testing.T) {
	v := vecmath.Vec3{X: 1, Y: 2, Z: -3}
	g, ps, hash := buildUniformField(5, v)
	toGridPIC(g, ps, hash)
	fromGridPIC(g, ps)
	i := 2 + 5*(2+5*2)
	got := ps.At(i).Velocity
	if math.Abs(got.X-v.X) > 1e-9 || math.Abs(got.Y-v.Y) > 1e-9 || math.Abs(got.Z-v.Z) > 1e-9 {
		t.Errorf("PIC round trip on uniform field: got %v, want %v", got, v)
	}
}

// Invariant: with method=flip_blend, blend=0, results agree with pic.
func TestFLIPBlendZeroMatchesPIC(t *testing.T) {
	v := vecmath.Vec3{X: 1, Y: -1, Z: 0.5}

	gPIC, psPIC, hashPIC := buildUniformField(5, v)
	toGridPIC(gPIC, psPIC, hashPIC)
	fromGridPIC(gPIC, psPIC)

	gFLIP, psFLIP, hashFLIP := buildUniformField(5, v)
	oldGrid := grid.New(5, 5, 5, vecmath.Vec3{}, 1.0)
	ToGrid(FLIPBlend, gFLIP, oldGrid, psFLIP, hashFLIP)
	FromGrid(FLIPBlend, gFLIP, oldGrid, psFLIP, 0.0, 1.0)

	i := 2 + 5*(2+5*2)
	want := psPIC.At(i).Velocity
	got := psFLIP.At(i).Velocity
	if math.Abs(got.X-want.X) > 1e-10 || math.Abs(got.Y-want.Y) > 1e-10 || math.Abs(got.Z-want.Z) > 1e-10 {
		t.Errorf("FLIP blend=0 vs PIC: got %v, want %v", got, want)
	}
}

// Invariant: APIC round-trip on a uniform translational field is
// identity and C is zero.
func TestAPICRoundTripUniformFieldIsIdentityWithZeroC(t *testing.T) {
	v := vecmath.Vec3{X: 0.3, Y: 1.7, Z: -0.4}
	g, ps, hash := buildUniformField(5, v)
	toGridAPIC(g, ps, hash)
	fromGridAPIC(g, ps, g.CellSize)

	i := 2 + 5*(2+5*2)
	p := ps.At(i)
	if math.Abs(p.Velocity.X-v.X) > 1e-9 || math.Abs(p.Velocity.Y-v.Y) > 1e-9 || math.Abs(p.Velocity.Z-v.Z) > 1e-9 {
		t.Errorf("APIC round trip velocity: got %v, want %v", p.Velocity, v)
	}
	zero := vecmath.Vec3{}
	if p.Cx.Length() > 1e-9 || p.Cy.Length() > 1e-9 || p.Cz.Length() > 1e-9 {
		t.Errorf("APIC C rows on uniform field should be zero, got cx=%v cy=%v cz=%v want %v", p.Cx, p.Cy, p.Cz, zero)
	}
}

func TestFaceSampleOutOfGridIsZero(t *testing.T) {
	g := grid.New(2, 2, 2, vecmath.Vec3{}, 1.0)
	got := faceSample(g, vecmath.Vec3i{X: 0, Y: 0, Z: 0}, 0, vecmath.Vec3i{X: -1, Y: 0, Z: 0})
	if got != 0 {
		t.Errorf("faceSample out of grid: got %v, want 0", got)
	}
}
