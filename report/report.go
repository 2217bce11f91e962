// SPDX-License-Identifier: GPL-2.0-or-later

// Package report renders maps as protobuf Structs for JSON output.
package report

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"govbsp/math/vec"
	"govbsp/vbsp"
)

func vector(v vec.Vec3) []interface{} {
	return []interface{}{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Lumps lists the non empty lumps of d.
func Lumps(d *vbsp.Directory) []interface{} {
	var lumps []interface{}
	for id := vbsp.LumpID(0); id < vbsp.HeaderLumps; id++ {
		e, _ := d.Entry(id)
		if e.Length == 0 {
			continue
		}
		lumps = append(lumps, map[string]interface{}{
			"id":      int(id),
			"name":    d.Meaning(id).String(),
			"offset":  int64(e.Offset),
			"length":  int64(e.Length),
			"version": int(e.Version),
		})
	}
	return lumps
}

// Summary describes a loaded map.
func Summary(m *vbsp.Map) (*structpb.Struct, error) {
	displacements := 0
	for i := range m.Surfaces {
		if m.Surfaces[i].IsDisplacement() {
			displacements++
		}
	}
	var materials []interface{}
	for _, n := range m.Materials() {
		materials = append(materials, n)
	}
	return structpb.NewStruct(map[string]interface{}{
		"name":     m.Name(),
		"id":       m.ID.String(),
		"version":  int(m.Version),
		"revision": int(m.Revision),
		"size":     int64(m.Directory().Size()),
		"checksum": fmt.Sprintf("%08x", m.Checksum()),
		"mins":     vector(m.Mins()),
		"maxs":     vector(m.Maxs()),
		"counts": map[string]interface{}{
			"planes":        len(m.Planes),
			"vertexes":      len(m.Vertexes),
			"edges":         len(m.Edges),
			"faces":         len(m.Faces),
			"brushes":       len(m.Brushes),
			"brushsides":    len(m.BrushSides),
			"nodes":         m.Tree.NumNodes(),
			"leafs":         m.Tree.NumLeafs(),
			"models":        len(m.Models),
			"areas":         len(m.Areas),
			"clusters":      m.NumClusters(),
			"displacements": displacements,
			"gamelumps":     len(m.GameLumps()),
		},
		"materials": materials,
		"lumps":     Lumps(m.Directory()),
	})
}

// Leaf describes one leaf with its faces and brushes.
func Leaf(m *vbsp.Map, ref vbsp.LeafRef) (*structpb.Struct, error) {
	l, err := m.Tree.Leaf(ref)
	if err != nil {
		return nil, err
	}
	faces, err := m.FacesOf(ref)
	if err != nil {
		return nil, err
	}
	brushes, err := m.BrushesOf(ref)
	if err != nil {
		return nil, err
	}
	f := make([]interface{}, len(faces))
	for i, r := range faces {
		f[i] = int(r)
	}
	b := make([]interface{}, len(brushes))
	for i, r := range brushes {
		b[i] = int(r)
	}
	return structpb.NewStruct(map[string]interface{}{
		"leaf":     int(ref),
		"contents": l.Contents.String(),
		"cluster":  int(l.Cluster),
		"area":     l.Area,
		"flags":    l.Flags,
		"mins":     vector(l.Mins),
		"maxs":     vector(l.Maxs),
		"faces":    f,
		"brushes":  b,
	})
}

// Clusters describes a cluster set.
func Clusters(from vbsp.ClusterID, s vbsp.ClusterSet) (*structpb.Struct, error) {
	c := s.Clusters()
	ids := make([]interface{}, len(c))
	for i, id := range c {
		ids[i] = int(id)
	}
	return structpb.NewStruct(map[string]interface{}{
		"cluster":  int(from),
		"count":    s.Len(),
		"clusters": ids,
	})
}

// Marshal renders msg as indented JSON.
func Marshal(msg proto.Message) ([]byte, error) {
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
}

func JSON(m *vbsp.Map) ([]byte, error) {
	s, err := Summary(m)
	if err != nil {
		return nil, err
	}
	return Marshal(s)
}
