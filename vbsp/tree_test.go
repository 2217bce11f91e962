// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp_test

import (
	"testing"

	"github.com/pkg/errors"

	"govbsp/math/vec"
	"govbsp/vbsp"
)

// twoLeafInput is split by z=0 with leaf 0 above and leaf 1 below.
func twoLeafInput() *vbsp.TreeInput {
	return &vbsp.TreeInput{
		Planes: []vbsp.Plane{{Normal: vec.Vec3{0, 0, 1}, Dist: 0, Type: vbsp.PlaneZ}},
		Nodes: []vbsp.NodeRecord{{
			PlaneNum: 0,
			Children: [2]int32{^0, ^1},
		}},
		Leafs: []vbsp.LeafRecord{
			{LeafBase: vbsp.LeafBase{Cluster: 0, Mins: [3]int16{0, 0, 0}, Maxs: [3]int16{10, 10, 10}}},
			{LeafBase: vbsp.LeafBase{Cluster: 1, Mins: [3]int16{0, 0, -10}, Maxs: [3]int16{10, 10, -1}}},
		},
		NumClusters: -1,
	}
}

func TestChild(t *testing.T) {
	tests := []struct {
		raw  int32
		want vbsp.Child
	}{
		{0, vbsp.Child{Kind: vbsp.NodeChild, Index: 0}},
		{5, vbsp.Child{Kind: vbsp.NodeChild, Index: 5}},
		{-1, vbsp.Child{Kind: vbsp.LeafChild, Index: 0}},
		{-2, vbsp.Child{Kind: vbsp.LeafChild, Index: 1}},
		{^41, vbsp.Child{Kind: vbsp.LeafChild, Index: 41}},
	}
	for _, tc := range tests {
		got := vbsp.DecodeChild(tc.raw)
		if got != tc.want {
			t.Errorf("DecodeChild(%d) = %v, want %v", tc.raw, got, tc.want)
		}
		if enc := got.Encode(); enc != tc.raw {
			t.Errorf("%v.Encode() = %d, want %d", got, enc, tc.raw)
		}
	}
}

func TestLocate(t *testing.T) {
	tree, err := vbsp.BuildTree(twoLeafInput())
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	tests := []struct {
		p    vec.Vec3
		want vbsp.LeafRef
	}{
		{vec.Vec3{5, 5, 5}, 0},
		{vec.Vec3{5, 5, -5}, 1},
		{vec.Vec3{0, 0, 0}, 0}, // on the plane
		{vec.Vec3{1000, -1000, 1000}, 0},
		{vec.Vec3{-1000, 1000, -0.5}, 1},
	}
	for _, tc := range tests {
		if got := tree.Locate(tc.p); got != tc.want {
			t.Errorf("Locate(%v) = %d, want %d", tc.p, got, tc.want)
		}
	}
	for _, tc := range tests[:2] {
		l, err := tree.Leaf(tree.Locate(tc.p))
		if err != nil || !l.Contains(tc.p) {
			t.Errorf("leaf at %v does not contain it: %+v, %v", tc.p, l, err)
		}
	}
	if _, err := tree.LocateFrom(1, vec.Vec3{}); err == nil {
		t.Errorf("LocateFrom(1) = nil error, want IndexRangeError")
	}
}

func TestLeafsInBox(t *testing.T) {
	tree, err := vbsp.BuildTree(twoLeafInput())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		mins, maxs vec.Vec3
		want       int
	}{
		{vec.Vec3{0, 0, 1}, vec.Vec3{1, 1, 2}, 1},
		{vec.Vec3{0, 0, -2}, vec.Vec3{1, 1, -1}, 1},
		{vec.Vec3{0, 0, -1}, vec.Vec3{1, 1, 1}, 2},
		{vec.Vec3{1, 1, 2}, vec.Vec3{0, 0, 1}, 1}, // corners swapped
		{vec.Vec3{1, 1, 1}, vec.Vec3{0, 0, -1}, 2},
	}
	for _, tc := range tests {
		if got := tree.LeafsInBox(tc.mins, tc.maxs); len(got) != tc.want {
			t.Errorf("LeafsInBox(%v, %v) = %v, want %d leafs", tc.mins, tc.maxs, got, tc.want)
		}
	}
}

func TestBuildTreeCorrupt(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*vbsp.TreeInput)
	}{
		{"self reference", func(in *vbsp.TreeInput) {
			in.Nodes[0].Children[0] = 0
		}},
		{"child node out of range", func(in *vbsp.TreeInput) {
			in.Nodes[0].Children[1] = 3
		}},
		{"child leaf out of range", func(in *vbsp.TreeInput) {
			in.Nodes[0].Children[1] = ^2
		}},
		{"same children", func(in *vbsp.TreeInput) {
			in.Nodes[0].Children[1] = ^0
		}},
		{"cycle", func(in *vbsp.TreeInput) {
			in.Nodes[0].Children = [2]int32{1, ^0}
			in.Nodes = append(in.Nodes, vbsp.NodeRecord{Children: [2]int32{0, ^1}})
		}},
		{"long cycle", func(in *vbsp.TreeInput) {
			in.Nodes[0].Children = [2]int32{1, ^0}
			in.Nodes = append(in.Nodes,
				vbsp.NodeRecord{Children: [2]int32{2, ^1}},
				vbsp.NodeRecord{Children: [2]int32{^0, 1}})
		}},
		{"no leafs", func(in *vbsp.TreeInput) {
			in.Leafs = nil
		}},
		{"root out of range", func(in *vbsp.TreeInput) {
			in.Root = 1
		}},
	}
	for _, tc := range tests {
		in := twoLeafInput()
		tc.modify(in)
		_, err := vbsp.BuildTree(in)
		var ce *vbsp.CorruptTreeError
		if !errors.As(err, &ce) {
			t.Errorf("%s: BuildTree = %v, want CorruptTreeError", tc.name, err)
		}
	}
}

func TestBuildTreeDAG(t *testing.T) {
	// two parents sharing a child is not a cycle
	in := twoLeafInput()
	in.Nodes = []vbsp.NodeRecord{
		{Children: [2]int32{1, 2}},
		{Children: [2]int32{2, ^0}},
		{Children: [2]int32{^0, ^1}},
	}
	if _, err := vbsp.BuildTree(in); err != nil {
		t.Errorf("BuildTree = %v, want nil", err)
	}
}

func TestBuildTreeRange(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*vbsp.TreeInput)
		field  string
	}{
		{"plane", func(in *vbsp.TreeInput) { in.Nodes[0].PlaneNum = 1 }, "plane"},
		{"node faces", func(in *vbsp.TreeInput) { in.Nodes[0].NumFaces = 1 }, "face"},
		{"leaf faces", func(in *vbsp.TreeInput) { in.Leafs[1].NumLeafFaces = 1 }, "leafface"},
		{"leaf brushes", func(in *vbsp.TreeInput) { in.Leafs[0].NumLeafBrushes = 2 }, "leafbrush"},
		{"leafface entry", func(in *vbsp.TreeInput) { in.LeafFaces = []uint16{3} }, "face"},
		{"leafbrush entry", func(in *vbsp.TreeInput) { in.LeafBrushes = []uint16{0} }, "brush"},
		{"cluster", func(in *vbsp.TreeInput) { in.NumClusters = 1 }, "cluster"},
		{"cluster below -1", func(in *vbsp.TreeInput) { in.Leafs[0].Cluster = -2 }, "cluster"},
	}
	for _, tc := range tests {
		in := twoLeafInput()
		tc.modify(in)
		_, err := vbsp.BuildTree(in)
		var ie *vbsp.IndexRangeError
		if !errors.As(err, &ie) {
			t.Errorf("%s: BuildTree = %v, want IndexRangeError", tc.name, err)
			continue
		}
		if ie.Field != tc.field {
			t.Errorf("%s: Field = %q, want %q", tc.name, ie.Field, tc.field)
		}
	}
}

func TestFacesOf(t *testing.T) {
	in := twoLeafInput()
	in.NumFaces = 3
	in.NumBrushes = 1
	in.LeafFaces = []uint16{2, 0, 1}
	in.LeafBrushes = []uint16{0}
	in.Leafs[0].FirstLeafFace, in.Leafs[0].NumLeafFaces = 1, 2
	in.Leafs[1].NumLeafBrushes = 1
	tree, err := vbsp.BuildTree(in)
	if err != nil {
		t.Fatal(err)
	}
	faces, err := tree.FacesOf(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(faces) != 2 || faces[0] != 0 || faces[1] != 1 {
		t.Errorf("FacesOf(0) = %v, want [0 1]", faces)
	}
	brushes, err := tree.BrushesOf(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(brushes) != 1 || brushes[0] != 0 {
		t.Errorf("BrushesOf(1) = %v, want [0]", brushes)
	}
	if _, err := tree.FacesOf(2); err == nil {
		t.Errorf("FacesOf(2) = nil error, want IndexRangeError")
	}
}
