// Package grid implements the uniform staggered (MAC) 3D grid: a dense
// array of cells, each carrying a cell-type tag and the three positive-
// face velocities, plus the world-space offset and cell size that map
// cell indices to world positions.
package grid

import "github.com/pthm-cable/macflip/vecmath"

// CellType tags the contents of a cell.
type CellType uint8

const (
	Air CellType = iota
	Fluid
	Solid
)

func (t CellType) String() string {
	switch t {
	case Air:
		return "air"
	case Fluid:
		return "fluid"
	case Solid:
		return "solid"
	default:
		return "unknown"
	}
}

// Cell is a single MAC grid cell: a type tag and the velocities on its
// positive-x, positive-y and positive-z faces. The negative-face
// velocity of a cell is always read from the positive face of its
// neighbor (see Grid.NegativeFace).
type Cell struct {
	Type    CellType
	FacePos vecmath.Vec3
}

// Grid is a dense row-major 3D array of cells, addressed (x,y,z) with x
// varying fastest, matching the teacher's and the original C++ grid's
// storage order.
type Grid struct {
	NX, NY, NZ int
	Offset     vecmath.Vec3
	CellSize   float64
	cells      []Cell
}

// New allocates a grid of the given dimensions, all cells initialized to
// Air with zero face velocities.
func New(nx, ny, nz int, offset vecmath.Vec3, cellSize float64) *Grid {
	g := &Grid{
		NX:       nx,
		NY:       ny,
		NZ:       nz,
		Offset:   offset,
		CellSize: cellSize,
		cells:    make([]Cell, nx*ny*nz),
	}
	return g
}

// Size returns the grid dimensions as a Vec3i.
func (g *Grid) Size() vecmath.Vec3i {
	return vecmath.Vec3i{X: g.NX, Y: g.NY, Z: g.NZ}
}

// InBounds reports whether i is a valid cell index.
func (g *Grid) InBounds(i vecmath.Vec3i) bool {
	return i.X >= 0 && i.X < g.NX && i.Y >= 0 && i.Y < g.NY && i.Z >= 0 && i.Z < g.NZ
}

func (g *Grid) rawIndex(i vecmath.Vec3i) int {
	return i.X + g.NX*(i.Y+g.NY*i.Z)
}

// RawIndex exposes the dense storage index for i, for callers (the
// pressure solver) that maintain their own parallel arrays keyed the
// same way as the grid's internal storage.
func (g *Grid) RawIndex(i vecmath.Vec3i) int {
	return g.rawIndex(i)
}

// At returns a pointer to the cell at index i. It does not check
// bounds: an out-of-range i panics only when its flat storage index
// falls outside the grid, and otherwise addresses some other cell, so
// callers check InBounds or iterate within [0,size) first.
func (g *Grid) At(i vecmath.Vec3i) *Cell {
	return &g.cells[g.rawIndex(i)]
}

// AtCoords is a convenience wrapper around At for literal coordinates.
func (g *Grid) AtCoords(x, y, z int) *Cell {
	return g.At(vecmath.Vec3i{X: x, Y: y, Z: z})
}

// CellAndType returns the cell and type at index i, or (nil, Solid) if i
// is outside the grid — out-of-grid cells behave as solid boundaries for
// every caller that branches on cell type (pressure solver, transfer).
func (g *Grid) CellAndType(i vecmath.Vec3i) (*Cell, CellType) {
	if !g.InBounds(i) {
		return nil, Solid
	}
	c := g.At(i)
	return c, c.Type
}

// CellCenter returns the world position of the center of cell i.
func (g *Grid) CellCenter(i vecmath.Vec3i) vecmath.Vec3 {
	h := g.CellSize
	return vecmath.Vec3{
		X: g.Offset.X + h*(float64(i.X)+0.5),
		Y: g.Offset.Y + h*(float64(i.Y)+0.5),
		Z: g.Offset.Z + h*(float64(i.Z)+0.5),
	}
}

// FaceCenter returns the world position of the center of the positive
// face of cell i along the given axis (0=X, 1=Y, 2=Z).
func (g *Grid) FaceCenter(i vecmath.Vec3i, axis int) vecmath.Vec3 {
	center := g.CellCenter(i)
	half := 0.5 * g.CellSize
	return center.WithComponent(axis, center.Component(axis)+half)
}

// NegativeFace returns the velocity component on the negative face of
// cell i along the given axis, which by construction is the positive
// face of the neighboring cell at i-axis, or 0 at the grid boundary
// (spec.md §3: "the outermost ... faces of the grid carry the boundary
// and are always clamped to zero").
func (g *Grid) NegativeFace(i vecmath.Vec3i, axis int) float64 {
	neighbor := i.Sub(vecmath.Axis(axis))
	if !g.InBounds(neighbor) {
		return 0
	}
	return g.At(neighbor).FacePos.Component(axis)
}

// Fill sets every cell to the given value.
func (g *Grid) Fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// ZeroBoundaryFaces clamps the outermost +x/+y/+z faces to zero, per
// spec.md §3 and §4.1 invariant 4.
func (g *Grid) ZeroBoundaryFaces() {
	if g.NX > 0 {
		for z := 0; z < g.NZ; z++ {
			for y := 0; y < g.NY; y++ {
				g.AtCoords(g.NX-1, y, z).FacePos.X = 0
			}
		}
	}
	if g.NY > 0 {
		for z := 0; z < g.NZ; z++ {
			for x := 0; x < g.NX; x++ {
				g.AtCoords(x, g.NY-1, z).FacePos.Y = 0
			}
		}
	}
	if g.NZ > 0 {
		for y := 0; y < g.NY; y++ {
			for x := 0; x < g.NX; x++ {
				g.AtCoords(x, y, g.NZ-1).FacePos.Z = 0
			}
		}
	}
}

// CloneInto copies src's cell data into dst. dst must have the same
// dimensions as src; used by the FLIP scheme to snapshot the
// post-transfer, pre-project grid into old_grid (spec.md §3 "Ownership
// & lifecycle").
func CloneInto(dst, src *Grid) {
	copy(dst.cells, src.cells)
	dst.NX, dst.NY, dst.NZ = src.NX, src.NY, src.NZ
	dst.Offset = src.Offset
	dst.CellSize = src.CellSize
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		NX: g.NX, NY: g.NY, NZ: g.NZ,
		Offset: g.Offset, CellSize: g.CellSize,
		cells: make([]Cell, len(g.cells)),
	}
	copy(out.cells, g.cells)
	return out
}

// WorldToCellUnclamped converts a world position to continuous grid
// coordinates (not yet floored or clamped).
func (g *Grid) WorldToCellUnclamped(pos vecmath.Vec3) vecmath.Vec3 {
	return pos.Sub(g.Offset).Scale(1.0 / g.CellSize)
}
