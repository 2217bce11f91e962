// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"slices"

	"govbsp/math/vec"
)

// Collision is the brush set of a map. Each brush is the convex volume
// bounded by the planes of its sides.
type Collision struct {
	planes  []Plane
	brushes []Brush
	sides   []BrushSide
}

// BuildCollision validates the side ranges of brushes and the references of
// every brush side.
func BuildCollision(planes []Plane, brushes []Brush, sides []BrushSide, numTexInfo, numDispInfo int) (*Collision, error) {
	for i, b := range brushes {
		first, n := int64(b.FirstSide), int64(b.NumSides)
		if first < 0 || n < 0 {
			return nil, &IndexRangeError{What: "brush", Owner: i, Field: "brushside", Index: min(first, n), Limit: len(sides)}
		}
		if first+n > int64(len(sides)) {
			return nil, &IndexRangeError{What: "brush", Owner: i, Field: "brushside", Index: first + n - 1, Limit: len(sides)}
		}
	}
	for i, s := range sides {
		if int(s.PlaneNum) >= len(planes) {
			return nil, &IndexRangeError{What: "brushside", Owner: i, Field: "plane", Index: int64(s.PlaneNum), Limit: len(planes)}
		}
		if s.TexInfo < -1 || int(s.TexInfo) >= numTexInfo {
			return nil, &IndexRangeError{What: "brushside", Owner: i, Field: "texinfo", Index: int64(s.TexInfo), Limit: numTexInfo}
		}
		if s.DispInfo < -1 || int(s.DispInfo) >= numDispInfo {
			return nil, &IndexRangeError{What: "brushside", Owner: i, Field: "dispinfo", Index: int64(s.DispInfo), Limit: numDispInfo}
		}
	}
	return &Collision{planes: planes, brushes: brushes, sides: sides}, nil
}

func (c *Collision) NumBrushes() int {
	return len(c.brushes)
}

func (c *Collision) Brush(ref BrushRef) (Brush, error) {
	if ref < 0 || int(ref) >= len(c.brushes) {
		return Brush{}, &IndexRangeError{What: "query", Owner: -1, Field: "brush", Index: int64(ref), Limit: len(c.brushes)}
	}
	return c.brushes[ref], nil
}

// Sides returns a copy of the sides of a brush.
func (c *Collision) Sides(ref BrushRef) ([]BrushSide, error) {
	sides, err := c.sidesOf(ref)
	if err != nil {
		return nil, err
	}
	return slices.Clone(sides), nil
}

func (c *Collision) sidesOf(ref BrushRef) ([]BrushSide, error) {
	b, err := c.Brush(ref)
	if err != nil {
		return nil, err
	}
	return c.sides[b.FirstSide : b.FirstSide+b.NumSides], nil
}

// Contains reports whether p lies inside or on the surface of the brush.
func (c *Collision) Contains(ref BrushRef, p vec.Vec3) bool {
	sides, err := c.sidesOf(ref)
	if err != nil || len(sides) == 0 {
		return false
	}
	for _, s := range sides {
		pl := &c.planes[s.PlaneNum]
		if vec.Dot(pl.Normal, p)-pl.Dist > 0 {
			return false
		}
	}
	return true
}

// IsBevel reports whether the side was added by the compiler for collision only.
func (s BrushSide) IsBevel() bool {
	return s.Bevel != 0
}
