// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"fmt"
	"slices"

	"govbsp/math/vec"
)

type (
	LeafRef   int
	FaceRef   int
	BrushRef  int
	ClusterID int
)

type ChildKind uint8

const (
	NodeChild ChildKind = iota
	LeafChild
)

func (k ChildKind) String() string {
	if k == LeafChild {
		return "leaf"
	}
	return "node"
}

// Child is the decoded form of a node child index: non negative indices on
// disk name a node, negative ones the leaf ^index.
type Child struct {
	Kind  ChildKind
	Index int
}

func DecodeChild(c int32) Child {
	if c >= 0 {
		return Child{Kind: NodeChild, Index: int(c)}
	}
	return Child{Kind: LeafChild, Index: int(^c)}
}

// Encode returns the on-disk form of c.
func (c Child) Encode() int32 {
	if c.Kind == LeafChild {
		return ^int32(c.Index)
	}
	return int32(c.Index)
}

func (c Child) String() string {
	return fmt.Sprintf("%v %d", c.Kind, c.Index)
}

type Node struct {
	Plane     int
	Children  [2]Child // front, back
	Mins      vec.Vec3
	Maxs      vec.Vec3
	FirstFace int
	NumFaces  int
	Area      int
}

type Leaf struct {
	Contents       Contents
	Cluster        ClusterID // -1 for leafs outside any cluster
	Area           int
	Flags          int
	Mins           vec.Vec3
	Maxs           vec.Vec3
	FirstLeafFace  int
	NumLeafFaces   int
	FirstLeafBrush int
	NumLeafBrushes int
	WaterDataID    int
	Ambient        CompressedLightCube
}

// Contains reports whether p lies within the bounds of the leaf.
func (l *Leaf) Contains(p vec.Vec3) bool {
	return vec.InBox(p, l.Mins, l.Maxs)
}

// TreeInput is everything BuildTree validates the node graph against.
type TreeInput struct {
	Planes      []Plane
	Nodes       []NodeRecord
	Leafs       []LeafRecord
	LeafFaces   []uint16
	LeafBrushes []uint16
	NumFaces    int
	NumBrushes  int
	NumClusters int // -1 skips the cluster check
	Root        int
}

// Tree is the validated node/leaf graph. It is immutable once built; all
// query methods are safe for concurrent use.
type Tree struct {
	planes      []Plane
	nodes       []Node
	leafs       []Leaf
	leafFaces   []FaceRef
	leafBrushes []BrushRef
	root        int
}

// BuildTree decodes the child encoding of every node and checks that the
// graph is an acyclic tree whose references are all in range.
func BuildTree(in *TreeInput) (*Tree, error) {
	if len(in.Nodes) == 0 {
		return nil, &CorruptTreeError{Node: -1, Reason: "no nodes"}
	}
	if len(in.Leafs) == 0 {
		return nil, &CorruptTreeError{Node: -1, Reason: "no leafs"}
	}
	if in.Root < 0 || in.Root >= len(in.Nodes) {
		return nil, &CorruptTreeError{Node: in.Root, Reason: fmt.Sprintf("root outside [0,%d)", len(in.Nodes))}
	}
	t := &Tree{
		planes:      in.Planes,
		nodes:       make([]Node, len(in.Nodes)),
		leafs:       make([]Leaf, len(in.Leafs)),
		leafFaces:   make([]FaceRef, len(in.LeafFaces)),
		leafBrushes: make([]BrushRef, len(in.LeafBrushes)),
		root:        in.Root,
	}
	for i, f := range in.LeafFaces {
		if int(f) >= in.NumFaces {
			return nil, &IndexRangeError{What: "leafface", Owner: i, Field: "face", Index: int64(f), Limit: in.NumFaces}
		}
		t.leafFaces[i] = FaceRef(f)
	}
	for i, b := range in.LeafBrushes {
		if int(b) >= in.NumBrushes {
			return nil, &IndexRangeError{What: "leafbrush", Owner: i, Field: "brush", Index: int64(b), Limit: in.NumBrushes}
		}
		t.leafBrushes[i] = BrushRef(b)
	}
	for i := range in.Nodes {
		n, err := buildNode(i, &in.Nodes[i], in)
		if err != nil {
			return nil, err
		}
		t.nodes[i] = n
	}
	for i := range in.Leafs {
		l, err := buildLeaf(i, &in.Leafs[i], in)
		if err != nil {
			return nil, err
		}
		t.leafs[i] = l
	}
	if err := t.checkAcyclic(); err != nil {
		return nil, err
	}
	return t, nil
}

func buildNode(i int, r *NodeRecord, in *TreeInput) (Node, error) {
	if r.PlaneNum < 0 || int(r.PlaneNum) >= len(in.Planes) {
		return Node{}, &IndexRangeError{What: "node", Owner: i, Field: "plane", Index: int64(r.PlaneNum), Limit: len(in.Planes)}
	}
	if end := int(r.FirstFace) + int(r.NumFaces); end > in.NumFaces {
		return Node{}, &IndexRangeError{What: "node", Owner: i, Field: "face", Index: int64(end - 1), Limit: in.NumFaces}
	}
	n := Node{
		Plane:     int(r.PlaneNum),
		Mins:      vec.FromInt16(r.Mins),
		Maxs:      vec.FromInt16(r.Maxs),
		FirstFace: int(r.FirstFace),
		NumFaces:  int(r.NumFaces),
		Area:      int(r.Area),
	}
	for side, raw := range r.Children {
		c := DecodeChild(raw)
		switch c.Kind {
		case NodeChild:
			if c.Index >= len(in.Nodes) {
				return Node{}, &CorruptTreeError{Node: i, Reason: fmt.Sprintf("child %d: node %d outside [0,%d)", side, c.Index, len(in.Nodes))}
			}
			if c.Index == i {
				return Node{}, &CorruptTreeError{Node: i, Reason: fmt.Sprintf("child %d references the node itself", side)}
			}
		case LeafChild:
			if c.Index >= len(in.Leafs) {
				return Node{}, &CorruptTreeError{Node: i, Reason: fmt.Sprintf("child %d: leaf %d outside [0,%d)", side, c.Index, len(in.Leafs))}
			}
		}
		n.Children[side] = c
	}
	if n.Children[0] == n.Children[1] {
		return Node{}, &CorruptTreeError{Node: i, Reason: fmt.Sprintf("both children are %v", n.Children[0])}
	}
	return n, nil
}

func buildLeaf(i int, r *LeafRecord, in *TreeInput) (Leaf, error) {
	if end := int(r.FirstLeafFace) + int(r.NumLeafFaces); end > len(in.LeafFaces) {
		return Leaf{}, &IndexRangeError{What: "leaf", Owner: i, Field: "leafface", Index: int64(end - 1), Limit: len(in.LeafFaces)}
	}
	if end := int(r.FirstLeafBrush) + int(r.NumLeafBrushes); end > len(in.LeafBrushes) {
		return Leaf{}, &IndexRangeError{What: "leaf", Owner: i, Field: "leafbrush", Index: int64(end - 1), Limit: len(in.LeafBrushes)}
	}
	if r.Cluster < -1 || (in.NumClusters >= 0 && int(r.Cluster) >= in.NumClusters) {
		return Leaf{}, &IndexRangeError{What: "leaf", Owner: i, Field: "cluster", Index: int64(r.Cluster), Limit: in.NumClusters}
	}
	return Leaf{
		Contents:       r.Contents,
		Cluster:        ClusterID(r.Cluster),
		Area:           r.Area(),
		Flags:          r.Flags(),
		Mins:           vec.FromInt16(r.Mins),
		Maxs:           vec.FromInt16(r.Maxs),
		FirstLeafFace:  int(r.FirstLeafFace),
		NumLeafFaces:   int(r.NumLeafFaces),
		FirstLeafBrush: int(r.FirstLeafBrush),
		NumLeafBrushes: int(r.NumLeafBrushes),
		WaterDataID:    int(r.LeafWaterDataID),
		Ambient:        r.Ambient,
	}, nil
}

// checkAcyclic runs an iterative three colour depth first search over all nodes.
func (t *Tree) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	type frame struct {
		node, next int
	}
	state := make([]uint8, len(t.nodes))
	var stack []frame
	for start := range t.nodes {
		if state[start] != white {
			continue
		}
		state[start] = grey
		stack = append(stack[:0], frame{node: start})
		for len(stack) > 0 {
			top := len(stack) - 1
			f := stack[top]
			if f.next == 2 {
				state[f.node] = black
				stack = stack[:top]
				continue
			}
			stack[top].next++
			c := t.nodes[f.node].Children[f.next]
			if c.Kind != NodeChild {
				continue
			}
			switch state[c.Index] {
			case grey:
				return &CorruptTreeError{Node: f.node, Reason: fmt.Sprintf("cycle through node %d", c.Index)}
			case white:
				state[c.Index] = grey
				stack = append(stack, frame{node: c.Index})
			}
		}
	}
	return nil
}

func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

func (t *Tree) NumLeafs() int {
	return len(t.leafs)
}

func (t *Tree) Root() int {
	return t.root
}

func (t *Tree) Node(i int) (Node, error) {
	if i < 0 || i >= len(t.nodes) {
		return Node{}, &IndexRangeError{What: "query", Owner: -1, Field: "node", Index: int64(i), Limit: len(t.nodes)}
	}
	return t.nodes[i], nil
}

func (t *Tree) Leaf(ref LeafRef) (Leaf, error) {
	if ref < 0 || int(ref) >= len(t.leafs) {
		return Leaf{}, &IndexRangeError{What: "query", Owner: -1, Field: "leaf", Index: int64(ref), Limit: len(t.leafs)}
	}
	return t.leafs[ref], nil
}

// Locate returns the leaf containing p. Points on a plane belong to its front side.
func (t *Tree) Locate(p vec.Vec3) LeafRef {
	return t.locate(t.root, p)
}

// LocateFrom walks the subtree of head, used for the trees of brush models.
func (t *Tree) LocateFrom(head int, p vec.Vec3) (LeafRef, error) {
	if head < 0 || head >= len(t.nodes) {
		return 0, &IndexRangeError{What: "query", Owner: -1, Field: "node", Index: int64(head), Limit: len(t.nodes)}
	}
	return t.locate(head, p), nil
}

func (t *Tree) locate(head int, p vec.Vec3) LeafRef {
	c := Child{Kind: NodeChild, Index: head}
	for c.Kind == NodeChild {
		n := &t.nodes[c.Index]
		if t.planes[n.Plane].Distance(p) >= 0 {
			c = n.Children[0]
		} else {
			c = n.Children[1]
		}
	}
	return LeafRef(c.Index)
}

// LeafsInBox returns every leaf whose region may intersect the box spanned
// by the two corners a and b.
func (t *Tree) LeafsInBox(a, b vec.Vec3) []LeafRef {
	mins, maxs := vec.MinMax(a, b)
	var leafs []LeafRef
	stack := []Child{{Kind: NodeChild, Index: t.root}}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.Kind == LeafChild {
			leafs = append(leafs, LeafRef(c.Index))
			continue
		}
		n := &t.nodes[c.Index]
		sides := t.planes[n.Plane].BoxOnPlaneSide(mins, maxs)
		if sides&2 != 0 {
			stack = append(stack, n.Children[1])
		}
		if sides&1 != 0 {
			stack = append(stack, n.Children[0])
		}
	}
	return leafs
}

// FacesOf returns a copy of the faces listed for a leaf.
func (t *Tree) FacesOf(ref LeafRef) ([]FaceRef, error) {
	l, err := t.Leaf(ref)
	if err != nil {
		return nil, err
	}
	end := l.FirstLeafFace + l.NumLeafFaces
	return slices.Clone(t.leafFaces[l.FirstLeafFace:end]), nil
}

// BrushesOf returns a copy of the brushes listed for a leaf.
func (t *Tree) BrushesOf(ref LeafRef) ([]BrushRef, error) {
	l, err := t.Leaf(ref)
	if err != nil {
		return nil, err
	}
	end := l.FirstLeafBrush + l.NumLeafBrushes
	return slices.Clone(t.leafBrushes[l.FirstLeafBrush:end]), nil
}
