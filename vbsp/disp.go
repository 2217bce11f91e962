// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"govbsp/math/vec"
)

const (
	MinDispPower = 2
	MaxDispPower = 4
)

// DispSize returns the number of vertices along one side of a displacement.
func DispSize(power int) int {
	return 1<<power + 1
}

// Displacement returns the (2^power+1)^2 vertices of a displacement surface
// in row major order. Rows run from the base corner nearest the start
// position along the first edge of the base quad.
func (m *Map) Displacement(s *Surface) ([]vec.Vec3, error) {
	if !s.IsDisplacement() {
		return nil, &IndexRangeError{What: "face", Owner: s.Face, Field: "dispinfo", Index: -1, Limit: len(m.DispInfos)}
	}
	d := &m.DispInfos[s.DispInfo]
	if d.Power < MinDispPower || d.Power > MaxDispPower {
		return nil, &IndexRangeError{What: "dispinfo", Owner: s.DispInfo, Field: "power", Index: int64(d.Power), Limit: MaxDispPower + 1}
	}
	if len(s.Polygon) != 4 {
		return nil, &DegenerateFaceError{Face: s.Face, Edges: len(s.Polygon)}
	}
	size := DispSize(int(d.Power))
	first := int64(d.DispVertStart)
	if end := first + int64(size*size); first < 0 || end > int64(len(m.DispVerts)) {
		return nil, &IndexRangeError{What: "dispinfo", Owner: s.DispInfo, Field: "dispvert", Index: end - 1, Limit: len(m.DispVerts)}
	}
	verts := m.DispVerts[first : first+int64(size*size)]

	start := 0
	best := vec.DistanceSquared(s.Polygon[0], d.StartPosition)
	for i := 1; i < 4; i++ {
		if dist := vec.DistanceSquared(s.Polygon[i], d.StartPosition); dist < best {
			best, start = dist, i
		}
	}
	var c [4]vec.Vec3
	for i := range c {
		c[i] = s.Polygon[(start+i)%4]
	}

	out := make([]vec.Vec3, size*size)
	step := 1 / float32(size-1)
	for i := 0; i < size; i++ {
		left := vec.Lerp(c[0], c[1], float32(i)*step)
		right := vec.Lerp(c[3], c[2], float32(i)*step)
		for j := 0; j < size; j++ {
			dv := &verts[i*size+j]
			p := vec.Lerp(left, right, float32(j)*step)
			out[i*size+j] = vec.Add(p, vec.Scale(dv.Dist, dv.Vec))
		}
	}
	return out, nil
}
