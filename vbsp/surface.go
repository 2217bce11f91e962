// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"govbsp/math/vec"
)

// Geometry holds the decoded lumps faces refer to.
type Geometry struct {
	Planes    []Plane
	Vertexes  []vec.Vec3
	Edges     []Edge
	SurfEdges []int32
	TexInfos  []TexInfo
	DispInfos []DispInfo
}

// Surface is a face with its polygon resolved.
type Surface struct {
	Face         int
	Plane        int
	Side         int
	OnNode       bool
	TexInfo      int // -1 if untextured
	DispInfo     int // -1 unless this is a displacement
	FirstEdge    int
	NumEdges     int
	Polygon      []vec.Vec3
	LightOfs     int // byte offset into the lighting lump, -1 if unlit
	LightmapMins [2]int
	LightmapSize [2]int
	Styles       [4]uint8
	Area         float32
}

func (s *Surface) IsDisplacement() bool {
	return s.DispInfo >= 0
}

// LightmapSamples is the number of luxels of one light style.
func (s *Surface) LightmapSamples() int {
	return (s.LightmapSize[0] + 1) * (s.LightmapSize[1] + 1)
}

// BuildSurfaces resolves the polygon of every face and validates its references.
func BuildSurfaces(faces []Face, g *Geometry) ([]Surface, error) {
	surfaces := make([]Surface, len(faces))
	for i := range faces {
		f := &faces[i]
		if int(f.PlaneNum) >= len(g.Planes) {
			return nil, &IndexRangeError{What: "face", Owner: i, Field: "plane", Index: int64(f.PlaneNum), Limit: len(g.Planes)}
		}
		if f.TexInfo < -1 || int(f.TexInfo) >= len(g.TexInfos) {
			return nil, &IndexRangeError{What: "face", Owner: i, Field: "texinfo", Index: int64(f.TexInfo), Limit: len(g.TexInfos)}
		}
		if f.DispInfo < -1 || int(f.DispInfo) >= len(g.DispInfos) {
			return nil, &IndexRangeError{What: "face", Owner: i, Field: "dispinfo", Index: int64(f.DispInfo), Limit: len(g.DispInfos)}
		}
		poly, err := g.polygon(i, f)
		if err != nil {
			return nil, err
		}
		surfaces[i] = Surface{
			Face:         i,
			Plane:        int(f.PlaneNum),
			Side:         int(f.Side),
			OnNode:       f.OnNode != 0,
			TexInfo:      int(f.TexInfo),
			DispInfo:     int(f.DispInfo),
			FirstEdge:    int(f.FirstEdge),
			NumEdges:     int(f.NumEdges),
			Polygon:      poly,
			LightOfs:     int(f.LightOfs),
			LightmapMins: [2]int{int(f.LightmapMins[0]), int(f.LightmapMins[1])},
			LightmapSize: [2]int{int(f.LightmapSize[0]), int(f.LightmapSize[1])},
			Styles:       f.Styles,
			Area:         f.Area,
		}
	}
	return surfaces, nil
}

// polygon walks the surfedges of f. A negative surfedge uses the edge reversed,
// so its second vertex starts the segment.
func (g *Geometry) polygon(face int, f *Face) ([]vec.Vec3, error) {
	n := int(f.NumEdges)
	if n < 3 {
		return nil, &DegenerateFaceError{Face: face, Edges: n}
	}
	first := int64(f.FirstEdge)
	if first < 0 {
		return nil, &IndexRangeError{What: "face", Owner: face, Field: "surfedge", Index: first, Limit: len(g.SurfEdges)}
	}
	if last := first + int64(n) - 1; last >= int64(len(g.SurfEdges)) {
		return nil, &IndexRangeError{What: "face", Owner: face, Field: "surfedge", Index: last, Limit: len(g.SurfEdges)}
	}
	poly := make([]vec.Vec3, n)
	for i := 0; i < n; i++ {
		se := int64(g.SurfEdges[first+int64(i)])
		side := 0
		if se < 0 {
			se = -se
			side = 1
		}
		if se >= int64(len(g.Edges)) {
			return nil, &IndexRangeError{What: "face", Owner: face, Field: "edge", Index: se, Limit: len(g.Edges)}
		}
		v := int(g.Edges[se].V[side])
		if v >= len(g.Vertexes) {
			return nil, &IndexRangeError{What: "edge", Owner: int(se), Field: "vertex", Index: int64(v), Limit: len(g.Vertexes)}
		}
		poly[i] = g.Vertexes[v]
	}
	return poly, nil
}
