package transfer

import (
	"github.com/pthm-cable/macflip/grid"
	"github.com/pthm-cable/macflip/vecmath"
)

// faceSample reads the face-axisComponent velocity of the cell at
// cellIdx+offset, treating any out-of-grid offset as zero (boundary
// faces are rigid, per spec.md §4.4's APIC gather rule).
func faceSample(g *grid.Grid, cellIdx vecmath.Vec3i, axisComponent int, offset vecmath.Vec3i) float64 {
	idx := cellIdx.Add(offset)
	if !g.InBounds(idx) {
		return 0
	}
	return g.At(idx).FacePos.Component(axisComponent)
}

// faceGradient reconstructs the row of the affine velocity matrix C
// for one velocity component (axisComponent) at a particle whose
// fractional position within cellIdx is t. It analytically
// differentiates the trilinear interpolant of the face-axisComponent
// field over the 2x2x2 subblock containing the particle's position in
// that field's own (possibly half-shifted) lattice, per spec.md
// §4.4's "Grid → particle" APIC rule, then divides by cell_size.
//
// Along axisComponent itself the face lattice already aligns with the
// particle's t (the two samples are exactly the v_neg/v_pos faces used
// by the plain PIC interpolation). Along the other two axes the face
// lattice sits at the half-integer (cell-center) offset, so the
// window is chosen from the sign of t-1/2: t-1/2 >= 0 selects the
// window at offsets {0,+1} (ties go to +1, i.e. "the right"); a
// negative t-1/2 shifts the window down to {-1,0}.
func faceGradient(g *grid.Grid, cellIdx vecmath.Vec3i, t vecmath.Vec3, axisComponent int, h float64) vecmath.Vec3 {
	var lowOffset [3]int
	var param [3]float64
	for axis := 0; axis < 3; axis++ {
		if axis == axisComponent {
			lowOffset[axis] = -1
			param[axis] = t.Component(axis)
			continue
		}
		tmid := t.Component(axis) - 0.5
		if tmid >= 0 {
			lowOffset[axis] = 0
			param[axis] = tmid
		} else {
			lowOffset[axis] = -1
			param[axis] = tmid + 1
		}
	}

	var corners [2][2][2]float64
	for dx := 0; dx < 2; dx++ {
		for dy := 0; dy < 2; dy++ {
			for dz := 0; dz < 2; dz++ {
				offset := vecmath.Vec3i{
					X: lowOffset[0] + dx,
					Y: lowOffset[1] + dy,
					Z: lowOffset[2] + dz,
				}
				corners[dx][dy][dz] = faceSample(g, cellIdx, axisComponent, offset)
			}
		}
	}

	fx, fy, fz := param[0], param[1], param[2]
	wx := [2]float64{1 - fx, fx}
	wy := [2]float64{1 - fy, fy}
	wz := [2]float64{1 - fz, fz}

	var dfx, dfy, dfz float64
	for dy := 0; dy < 2; dy++ {
		for dz := 0; dz < 2; dz++ {
			dfx += (corners[1][dy][dz] - corners[0][dy][dz]) * wy[dy] * wz[dz]
		}
	}
	for dx := 0; dx < 2; dx++ {
		for dz := 0; dz < 2; dz++ {
			dfy += (corners[dx][1][dz] - corners[dx][0][dz]) * wx[dx] * wz[dz]
		}
	}
	for dx := 0; dx < 2; dx++ {
		for dy := 0; dy < 2; dy++ {
			dfz += (corners[dx][dy][1] - corners[dx][dy][0]) * wx[dx] * wy[dy]
		}
	}

	return vecmath.Vec3{X: dfx / h, Y: dfy / h, Z: dfz / h}
}
