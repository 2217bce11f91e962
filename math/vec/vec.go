// SPDX-License-Identifier: GPL-2.0-or-later

package vec

// Vec3 is indexable so that axial plane types can address a component directly.
type Vec3 [3]float32

func FromInt16(a [3]int16) Vec3 {
	return Vec3{float32(a[0]), float32(a[1]), float32(a[2])}
}

// Add returns a + b
func Add(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns a - b
func Sub(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns the vector multiplied by the skalar s
func Scale(s float32, v Vec3) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns a dot b
func Dot(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Lerp computes a weighted average between two points
func Lerp(a, b Vec3, frac float32) Vec3 {
	fi := 1 - frac
	return Vec3{
		fi*a[0] + frac*b[0],
		fi*a[1] + frac*b[1],
		fi*a[2] + frac*b[2],
	}
}

// DistanceSquared returns |a-b|^2
func DistanceSquared(a, b Vec3) float32 {
	d := Sub(a, b)
	return Dot(d, d)
}

func minmax(a, b float32) (float32, float32) {
	if a < b {
		return a, b
	}
	return b, a
}

func MinMax(a, b Vec3) (Vec3, Vec3) {
	var r, s Vec3
	r[0], s[0] = minmax(a[0], b[0])
	r[1], s[1] = minmax(a[1], b[1])
	r[2], s[2] = minmax(a[2], b[2])
	return r, s
}

// InBox reports whether p lies inside the closed box [mins, maxs].
func InBox(p, mins, maxs Vec3) bool {
	for i := range p {
		if p[i] < mins[i] || p[i] > maxs[i] {
			return false
		}
	}
	return true
}
