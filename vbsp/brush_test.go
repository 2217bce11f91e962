// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp_test

import (
	"testing"

	"github.com/pkg/errors"

	"govbsp/math/vec"
	"govbsp/vbsp"
	"govbsp/vbsp/vbsptest"
)

func sampleCollision(t *testing.T) *vbsp.Collision {
	t.Helper()
	s := vbsptest.Sample(20)
	c, err := vbsp.BuildCollision(s.Planes, s.Brushes, s.BrushSides, len(s.TexInfos), len(s.DispInfos))
	if err != nil {
		t.Fatalf("BuildCollision: %v", err)
	}
	return c
}

func TestBrushContains(t *testing.T) {
	c := sampleCollision(t)
	tests := []struct {
		p    vec.Vec3
		want bool
	}{
		{vec.Vec3{0, 0, 10}, true},
		{vec.Vec3{16, 16, 32}, true}, // corner, on every plane
		{vec.Vec3{-16, 0, 0}, true},
		{vec.Vec3{17, 0, 10}, false},
		{vec.Vec3{0, 0, -1}, false},
		{vec.Vec3{0, 0, 33}, false},
	}
	for _, tc := range tests {
		if got := c.Contains(0, tc.p); got != tc.want {
			t.Errorf("Contains(0, %v) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if c.Contains(1, vec.Vec3{}) {
		t.Errorf("Contains(1, origin) = true for a missing brush")
	}
}

func TestBrushSides(t *testing.T) {
	c := sampleCollision(t)
	sides, err := c.Sides(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sides) != 6 {
		t.Fatalf("len(Sides(0)) = %d, want 6", len(sides))
	}
	bevels := 0
	for _, s := range sides {
		if s.IsBevel() {
			bevels++
		}
	}
	if bevels != 1 {
		t.Errorf("bevel sides = %d, want 1", bevels)
	}
	if _, err := c.Brush(-1); err == nil {
		t.Errorf("Brush(-1) = nil error")
	}
}

func TestBuildCollisionRange(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*vbsptest.Map)
		field  string
	}{
		{"sides past end", func(m *vbsptest.Map) { m.Brushes[0].NumSides = 7 }, "brushside"},
		{"negative first side", func(m *vbsptest.Map) { m.Brushes[0].FirstSide = -1 }, "brushside"},
		{"side plane", func(m *vbsptest.Map) { m.BrushSides[3].PlaneNum = 70 }, "plane"},
		{"side texinfo", func(m *vbsptest.Map) { m.BrushSides[3].TexInfo = 1 }, "texinfo"},
		{"side dispinfo", func(m *vbsptest.Map) { m.BrushSides[3].DispInfo = 1 }, "dispinfo"},
	}
	for _, tc := range tests {
		m := vbsptest.Sample(20)
		tc.modify(m)
		_, err := vbsp.BuildCollision(m.Planes, m.Brushes, m.BrushSides, len(m.TexInfos), len(m.DispInfos))
		var ie *vbsp.IndexRangeError
		if !errors.As(err, &ie) {
			t.Errorf("%s: BuildCollision = %v, want IndexRangeError", tc.name, err)
			continue
		}
		if ie.Field != tc.field {
			t.Errorf("%s: Field = %q, want %q", tc.name, ie.Field, tc.field)
		}
	}
}
