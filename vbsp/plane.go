// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"govbsp/math/vec"
)

const (
	PlaneX = iota
	PlaneY
	PlaneZ
	PlaneAnyX
	PlaneAnyY
	PlaneAnyZ
)

// Axial reports whether the normal is a positive unit axis.
func (p *Plane) Axial() bool {
	return p.Type >= PlaneX && p.Type <= PlaneZ && p.Normal[p.Type] == 1
}

// SignBits has bit i set when Normal[i] is negative.
func (p *Plane) SignBits() int {
	bits := 0
	for i, n := range p.Normal {
		if n < 0 {
			bits |= 1 << i
		}
	}
	return bits
}

// Distance returns the signed distance of point to the plane.
func (p *Plane) Distance(point vec.Vec3) float32 {
	if p.Axial() {
		return point[p.Type] - p.Dist
	}
	return vec.Dot(p.Normal, point) - p.Dist
}

// BoxOnPlaneSide returns 1 if the box is in front of the plane, 2 if it is
// behind and 3 if the plane crosses it.
func (p *Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	if p.Axial() {
		if p.Dist <= mins[p.Type] {
			return 1
		}
		if p.Dist >= maxs[p.Type] {
			return 2
		}
		return 3
	}
	// pick the corners nearest and farthest along the normal
	var near, far vec.Vec3
	for i, n := range p.Normal {
		if n < 0 {
			near[i], far[i] = maxs[i], mins[i]
		} else {
			near[i], far[i] = mins[i], maxs[i]
		}
	}
	d1 := vec.Dot(p.Normal, far)
	d2 := vec.Dot(p.Normal, near)
	sides := 0
	if d1 >= p.Dist {
		sides = 1
	}
	if d2 < p.Dist {
		sides |= 2
	}
	return sides
}
