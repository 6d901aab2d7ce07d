// Package pressure builds and solves the variable-coefficient Poisson
// system that enforces incompressibility on a MAC grid, and applies
// the resulting pressure gradient back onto face velocities.
package pressure

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/vecmath"
)

// Config tunes the conjugate-gradient solve. Tau and Sigma are the
// modified-incomplete-Cholesky constants from the original fluid
// solver (0.97 / 0.25); Tolerance and MaxIterations bound convergence.
type Config struct {
	Tolerance     float64
	MaxIterations int
	Tau           float64
	Sigma         float64
}

// DefaultConfig returns the reference solver's tuning.
func DefaultConfig() Config {
	return Config{
		Tolerance:     1e-6,
		MaxIterations: 200,
		Tau:           0.97,
		Sigma:         0.25,
	}
}

// cellData caches, for one fluid cell, the diagonal neighbor count and
// which of its positive-axis neighbors are themselves fluid — the
// compact per-cell encoding of the sparse A matrix row.
type cellData struct {
	nonSolidNeighbors int
	fluidXPos         bool
	fluidYPos         bool
	fluidZPos         bool
}

// System is the assembled linear system over one grid's fluid cells,
// built fresh each substep from the current cell-type field.
type System struct {
	g          *grid.Grid
	dt         float64
	density    float64
	cellSize   float64
	aScale     float64
	fluidCells []vecmath.Vec3i
	ordinal    []int
	cells      []cellData
	b          []float64
}

// Result reports the outcome of a CG solve.
type Result struct {
	Pressure   []float64
	Residual   float64
	Iterations int
	Converged  bool
}

var faceOffsets = [6]vecmath.Vec3i{
	{X: -1}, {X: 1}, {Y: -1}, {Y: 1}, {Z: -1}, {Z: 1},
}

// BuildSystem scans g for fluid cells, assigns them a stable row-major
// ordinal, and builds the A-matrix's compact encoding plus the
// divergence right-hand side b, per spec.md §4.5.
func BuildSystem(g *grid.Grid, dt, density float64) *System {
	size := g.Size()
	s := &System{
		g:        g,
		dt:       dt,
		density:  density,
		cellSize: g.CellSize,
		aScale:   dt / (density * g.CellSize * g.CellSize),
		ordinal:  make([]int, size.X*size.Y*size.Z),
	}
	for i := range s.ordinal {
		s.ordinal[i] = -1
	}
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				idx := vecmath.Vec3i{X: x, Y: y, Z: z}
				if g.At(idx).Type != grid.Fluid {
					continue
				}
				s.ordinal[g.RawIndex(idx)] = len(s.fluidCells)
				s.fluidCells = append(s.fluidCells, idx)
			}
		}
	}
	n := len(s.fluidCells)
	s.cells = make([]cellData, n)
	s.b = make([]float64, n)
	for i, idx := range s.fluidCells {
		s.cells[i] = computeCellData(g, idx)
		s.b[i] = computeB(g, idx, g.CellSize)
	}
	return s
}

// NumFluidCells returns the number of rows in the assembled system.
func (s *System) NumFluidCells() int {
	return len(s.fluidCells)
}

func computeCellData(g *grid.Grid, idx vecmath.Vec3i) cellData {
	var cd cellData
	for _, o := range faceOffsets {
		_, ct := g.CellAndType(idx.Add(o))
		if ct != grid.Solid {
			cd.nonSolidNeighbors++
		}
	}
	_, ctX := g.CellAndType(idx.Add(vecmath.Vec3i{X: 1}))
	_, ctY := g.CellAndType(idx.Add(vecmath.Vec3i{Y: 1}))
	_, ctZ := g.CellAndType(idx.Add(vecmath.Vec3i{Z: 1}))
	cd.fluidXPos = ctX == grid.Fluid
	cd.fluidYPos = ctY == grid.Fluid
	cd.fluidZPos = ctZ == grid.Fluid
	return cd
}

// facePositive reads the owning cell's own face along axis, replacing
// it with the solid velocity (0) if the +axis neighbor is solid.
func facePositive(g *grid.Grid, idx vecmath.Vec3i, axis int) float64 {
	_, ct := g.CellAndType(idx.Add(vecmath.Axis(axis)))
	if ct == grid.Solid {
		return 0
	}
	return g.At(idx).FacePos.Component(axis)
}

// faceNegative reads the -axis neighbor's +axis face, replacing it
// with the solid velocity (0) if that neighbor is solid or off-grid.
func faceNegative(g *grid.Grid, idx vecmath.Vec3i, axis int) float64 {
	neighbor := idx.Sub(vecmath.Axis(axis))
	_, ct := g.CellAndType(neighbor)
	if ct == grid.Solid {
		return 0
	}
	return g.NegativeFace(idx, axis)
}

func computeB(g *grid.Grid, idx vecmath.Vec3i, h float64) float64 {
	div := 0.0
	for axis := 0; axis < 3; axis++ {
		div += facePositive(g, idx, axis) - faceNegative(g, idx, axis)
	}
	return -div / h
}

// fluidNeighbor returns the ordinal of the neighbor at idx+(dx,dy,dz)
// if it is itself a fluid cell.
func (s *System) fluidNeighbor(idx vecmath.Vec3i, dx, dy, dz int) (int, bool) {
	n := idx.Add(vecmath.Vec3i{X: dx, Y: dy, Z: dz})
	if !s.g.InBounds(n) {
		return 0, false
	}
	if s.g.At(n).Type != grid.Fluid {
		return 0, false
	}
	return s.ordinal[s.g.RawIndex(n)], true
}

// applyA computes out = A*x using the compact per-cell encoding,
// equivalent to pressure_solver::_apply_a.
func (s *System) applyA(x, out []float64) {
	for i, idx := range s.fluidCells {
		cd := s.cells[i]
		sum := float64(cd.nonSolidNeighbors) * x[i]
		for _, o := range faceOffsets {
			n := idx.Add(o)
			if !s.g.InBounds(n) || s.g.At(n).Type != grid.Fluid {
				continue
			}
			j := s.ordinal[s.g.RawIndex(n)]
			sum -= x[j]
		}
		out[i] = s.aScale * sum
	}
}

// contribution is the squared-preconditioner term MIC(0) subtracts
// from the diagonal for one already-processed fluid neighbor, per
// pressure_solver::_compute_preconditioner.
func contribution(aScale, px float64, bit1, bit2 bool, tau float64) float64 {
	c := aScale * aScale * px * px
	cross := 0.0
	if bit1 {
		cross += c
	}
	if bit2 {
		cross += c
	}
	return c + tau*cross
}

// buildPreconditioner computes the MIC(0) factorization's diagonal
// scale vector, in row-major order so that every -x/-y/-z fluid
// neighbor of a cell has already been processed when that cell is
// reached.
func (s *System) buildPreconditioner(tau, sigma float64) []float64 {
	n := len(s.fluidCells)
	precon := make([]float64, n)
	for i, idx := range s.fluidCells {
		cd := s.cells[i]
		if cd.nonSolidNeighbors == 0 {
			precon[i] = 0
			continue
		}
		diag := s.aScale * float64(cd.nonSolidNeighbors)
		e := diag
		if j, ok := s.fluidNeighbor(idx, -1, 0, 0); ok {
			jc := s.cells[j]
			e -= contribution(s.aScale, precon[j], jc.fluidYPos, jc.fluidZPos, tau)
		}
		if j, ok := s.fluidNeighbor(idx, 0, -1, 0); ok {
			jc := s.cells[j]
			e -= contribution(s.aScale, precon[j], jc.fluidXPos, jc.fluidZPos, tau)
		}
		if j, ok := s.fluidNeighbor(idx, 0, 0, -1); ok {
			jc := s.cells[j]
			e -= contribution(s.aScale, precon[j], jc.fluidXPos, jc.fluidYPos, tau)
		}
		if e < sigma*diag {
			e = diag
		}
		precon[i] = 1 / math.Sqrt(e)
	}
	return precon
}

// applyPreconditioner solves L*L^T * z = r by forward then backward
// substitution through the factored system, equivalent to
// pressure_solver::_apply_preconditioner.
func (s *System) applyPreconditioner(r, precon []float64) []float64 {
	n := len(s.fluidCells)
	q := make([]float64, n)
	for i, idx := range s.fluidCells {
		t := r[i]
		if j, ok := s.fluidNeighbor(idx, -1, 0, 0); ok {
			t -= -s.aScale * precon[j] * q[j]
		}
		if j, ok := s.fluidNeighbor(idx, 0, -1, 0); ok {
			t -= -s.aScale * precon[j] * q[j]
		}
		if j, ok := s.fluidNeighbor(idx, 0, 0, -1); ok {
			t -= -s.aScale * precon[j] * q[j]
		}
		q[i] = t * precon[i]
	}
	z := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		idx := s.fluidCells[i]
		cd := s.cells[i]
		t := q[i]
		if cd.fluidXPos {
			j := s.ordinal[s.g.RawIndex(idx.Add(vecmath.Vec3i{X: 1}))]
			t -= -s.aScale * precon[i] * z[j]
		}
		if cd.fluidYPos {
			j := s.ordinal[s.g.RawIndex(idx.Add(vecmath.Vec3i{Y: 1}))]
			t -= -s.aScale * precon[i] * z[j]
		}
		if cd.fluidZPos {
			j := s.ordinal[s.g.RawIndex(idx.Add(vecmath.Vec3i{Z: 1}))]
			t -= -s.aScale * precon[i] * z[j]
		}
		z[i] = t * precon[i]
	}
	return z
}

// Solve runs preconditioned conjugate gradient to convergence or
// cfg.MaxIterations, equivalent to pressure_solver::solve. Exceeding
// MaxIterations is reported via Result.Converged=false, not an error;
// callers still apply the returned (partial) pressure.
func (s *System) Solve(cfg Config) Result {
	n := len(s.fluidCells)
	if n == 0 {
		return Result{Pressure: nil, Residual: 0, Iterations: 0, Converged: true}
	}

	bNorm := floats.Norm(s.b, math.Inf(1))
	tol := cfg.Tolerance*bNorm + 1e-12

	p := make([]float64, n)
	r := make([]float64, n)
	copy(r, s.b)

	resid := floats.Norm(r, math.Inf(1))
	if resid <= tol {
		return Result{Pressure: p, Residual: resid, Iterations: 0, Converged: true}
	}

	precon := s.buildPreconditioner(cfg.Tau, cfg.Sigma)
	z := s.applyPreconditioner(r, precon)
	sVec := make([]float64, n)
	copy(sVec, z)
	sigma := floats.Dot(z, r)

	iterations := 0
	converged := false
	azBuf := make([]float64, n)
	for iterations < cfg.MaxIterations {
		s.applyA(sVec, azBuf)
		alpha := sigma / floats.Dot(azBuf, sVec)
		floats.AddScaled(p, alpha, sVec)
		floats.AddScaled(r, -alpha, azBuf)
		resid = floats.Norm(r, math.Inf(1))
		iterations++
		if resid <= tol {
			converged = true
			break
		}
		z = s.applyPreconditioner(r, precon)
		sigmaNew := floats.Dot(z, r)
		beta := sigmaNew / sigma
		for i := range sVec {
			sVec[i] = z[i] + beta*sVec[i]
		}
		sigma = sigmaNew
	}

	return Result{Pressure: p, Residual: resid, Iterations: iterations, Converged: converged}
}

// pressureAt returns the pressure at idx, or 0 for air, solid, or
// out-of-grid cells (the free-surface / no-flux boundary conditions).
func (s *System) pressureAt(pressure []float64, idx vecmath.Vec3i) float64 {
	if !s.g.InBounds(idx) {
		return 0
	}
	c := s.g.At(idx)
	if c.Type != grid.Fluid {
		return 0
	}
	return pressure[s.ordinal[s.g.RawIndex(idx)]]
}

// ApplyPressure subtracts the pressure gradient from every non-solid
// cell's positive faces, per spec.md §4.5's "Apply pressure" rule.
// Solid cells are skipped outright (their own face velocities are
// never touched); a face whose neighbor is solid is clamped to zero
// instead of receiving a gradient correction.
func (s *System) ApplyPressure(pressure []float64) {
	coeff := s.dt / (s.density * s.cellSize)
	size := s.g.Size()
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				idx := vecmath.Vec3i{X: x, Y: y, Z: z}
				cell := s.g.At(idx)
				if cell.Type == grid.Solid {
					continue
				}
				for axis := 0; axis < 3; axis++ {
					neighbor := idx.Add(vecmath.Axis(axis))
					_, nType := s.g.CellAndType(neighbor)
					if nType == grid.Solid {
						cell.FacePos = cell.FacePos.WithComponent(axis, 0)
						continue
					}
					pa := s.pressureAt(pressure, idx)
					pb := s.pressureAt(pressure, neighbor)
					v := cell.FacePos.Component(axis) - coeff*(pb-pa)
					cell.FacePos = cell.FacePos.WithComponent(axis, v)
				}
			}
		}
	}
}
