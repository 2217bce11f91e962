// SPDX-License-Identifier: GPL-2.0-or-later

// Package vbsptest builds synthetic level files for tests.
package vbsptest

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/zip"

	"govbsp/math/vec"
	"govbsp/vbsp"
)

// Map describes the lumps of a file. Empty slices become empty lumps.
type Map struct {
	Version     int32
	Revision    int32
	LeafVersion int32

	Entities        string
	Planes          []vbsp.Plane
	Vertexes        []vec.Vec3
	Edges           []vbsp.Edge
	SurfEdges       []int32
	TexInfos        []vbsp.TexInfo
	TexData         []vbsp.TexData
	TexStringTable  []int32
	TexStringData   []byte
	Faces           []vbsp.Face
	Brushes         []vbsp.Brush
	BrushSides      []vbsp.BrushSide
	Nodes           []vbsp.NodeRecord
	Leafs           []vbsp.LeafRecord
	LeafFaces       []uint16
	LeafBrushes     []uint16
	Models          []vbsp.Model
	Areas           []vbsp.Area
	DispInfos       []vbsp.DispInfo
	DispVerts       []vbsp.DispVert
	Lighting        []vbsp.ColorRGBExp32
	AmbientIndex    []vbsp.LeafAmbientIndex
	AmbientLighting []vbsp.LeafAmbientLighting
	Vis             *vbsp.Visibility
	GameLumps       []vbsp.GameLump
	Pakfile         []byte

	// Raw replaces the encoded content of a slot.
	Raw map[vbsp.LumpID][]byte
}

func (m *Map) lumps() [vbsp.HeaderLumps][]byte {
	var l [vbsp.HeaderLumps][]byte
	set := func(lm vbsp.LumpMeaning, b []byte) {
		l[vbsp.LumpID(lm)] = b
	}
	if m.Entities != "" {
		set(vbsp.LumpEntities, append([]byte(m.Entities), 0))
	}
	set(vbsp.LumpPlanes, vbsp.EncodePlanes(m.Planes))
	set(vbsp.LumpVertexes, vbsp.EncodeVertexes(m.Vertexes))
	set(vbsp.LumpEdges, vbsp.EncodeEdges(m.Edges))
	set(vbsp.LumpSurfEdges, vbsp.EncodeSurfEdges(m.SurfEdges))
	set(vbsp.LumpTexInfo, vbsp.EncodeTexInfos(m.TexInfos))
	set(vbsp.LumpTexData, vbsp.EncodeTexData(m.TexData))
	set(vbsp.LumpTexDataStringTable, vbsp.EncodeTexDataStringTable(m.TexStringTable))
	set(vbsp.LumpTexDataStringData, m.TexStringData)
	set(vbsp.LumpFaces, vbsp.EncodeFaces(m.Faces))
	set(vbsp.LumpBrushes, vbsp.EncodeBrushes(m.Brushes))
	set(vbsp.LumpBrushSides, vbsp.EncodeBrushSides(m.BrushSides))
	set(vbsp.LumpNodes, vbsp.EncodeNodes(m.Nodes))
	set(vbsp.LumpLeafs, vbsp.EncodeLeafs(m.LeafVersion, m.Leafs))
	set(vbsp.LumpLeafFaces, vbsp.EncodeLeafFaces(m.LeafFaces))
	set(vbsp.LumpLeafBrushes, vbsp.EncodeLeafBrushes(m.LeafBrushes))
	set(vbsp.LumpModels, vbsp.EncodeModels(m.Models))
	set(vbsp.LumpAreas, vbsp.EncodeAreas(m.Areas))
	set(vbsp.LumpDispInfo, vbsp.EncodeDispInfos(m.DispInfos))
	set(vbsp.LumpDispVerts, vbsp.EncodeDispVerts(m.DispVerts))
	set(vbsp.LumpLighting, vbsp.EncodeLighting(m.Lighting))
	set(vbsp.LumpLeafAmbientIndex, vbsp.EncodeLeafAmbientIndices(m.AmbientIndex))
	set(vbsp.LumpLeafAmbientLighting, vbsp.EncodeLeafAmbientLighting(m.AmbientLighting))
	set(vbsp.LumpVisibility, vbsp.EncodeVisibility(m.Vis))
	if len(m.GameLumps) > 0 {
		set(vbsp.LumpGameLump, vbsp.EncodeGameLumps(m.GameLumps))
	}
	set(vbsp.LumpPakfile, m.Pakfile)
	for id, b := range m.Raw {
		l[id] = b
	}
	return l
}

// Bytes lays out the header followed by every non empty lump in slot
// order, each aligned to four bytes.
func (m *Map) Bytes() []byte {
	lumps := m.lumps()
	h := vbsp.Header{
		Ident:    vbsp.Ident,
		Version:  m.Version,
		Revision: m.Revision,
	}
	h.Lumps[vbsp.LumpLeafs].Version = m.LeafVersion
	ofs := vbsp.HeaderSize
	for id, b := range lumps {
		if len(b) == 0 {
			continue
		}
		h.Lumps[id].Offset = uint32(ofs)
		h.Lumps[id].Length = uint32(len(b))
		ofs += (len(b) + 3) &^ 3
	}
	var buf bytes.Buffer
	buf.Grow(ofs)
	binary.Write(&buf, binary.LittleEndian, &h)
	for _, b := range lumps {
		if len(b) == 0 {
			continue
		}
		buf.Write(b)
		for buf.Len()%4 != 0 {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

// Zip returns a stored zip archive holding files.
func Zip(files map[string]string, names ...string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, n := range names {
		f, err := w.CreateHeader(&zip.FileHeader{Name: n, Method: zip.Store})
		if err != nil {
			panic(err)
		}
		if _, err := f.Write([]byte(files[n])); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

const (
	// material of every texinfo of the Sample map
	SampleMaterial = "TOOLS/TOOLSNODRAW"
	SamplePakFile  = "materials/sample.vmt"
	SampleEntities = "{\n\"classname\" \"worldspawn\"\n}\n"
)

// Sample returns a small but complete map. Space is split by the plane z=0:
// leaf 0 (cluster 0, empty) lies above, leaf 1 (cluster 1, water) below.
// Leaf 0 holds the solid brush [-16,16]x[-16,16]x[0,32] and the lit floor
// face 0; leaf 1 holds the displacement face 1. Cluster 0 sees both clusters,
// cluster 1 only itself.
func Sample(version int32) *Map {
	axis := func(n vec.Vec3, d float32, t int32) vbsp.Plane {
		return vbsp.Plane{Normal: n, Dist: d, Type: t}
	}
	m := &Map{
		Version:     version,
		Revision:    7,
		LeafVersion: 1,
		Entities:    SampleEntities,
		Planes: []vbsp.Plane{
			axis(vec.Vec3{0, 0, 1}, 0, vbsp.PlaneZ),
			axis(vec.Vec3{1, 0, 0}, 16, vbsp.PlaneX),
			axis(vec.Vec3{-1, 0, 0}, 16, vbsp.PlaneX),
			axis(vec.Vec3{0, 1, 0}, 16, vbsp.PlaneY),
			axis(vec.Vec3{0, -1, 0}, 16, vbsp.PlaneY),
			axis(vec.Vec3{0, 0, 1}, 32, vbsp.PlaneZ),
			axis(vec.Vec3{0, 0, -1}, 0, vbsp.PlaneZ),
		},
		Vertexes: []vec.Vec3{
			{-64, -64, 0},
			{64, -64, 0},
			{64, 64, 0},
			{-64, 64, 0},
		},
		Edges:     []vbsp.Edge{{}, {V: [2]uint16{0, 1}}, {V: [2]uint16{1, 2}}, {V: [2]uint16{2, 3}}, {V: [2]uint16{3, 0}}},
		SurfEdges: []int32{1, 2, 3, 4, -4, -3, -2, -1},
		TexInfos: []vbsp.TexInfo{{
			TextureVecs:  [2][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}},
			LightmapVecs: [2][4]float32{{1.0 / 16, 0, 0, 0}, {0, 1.0 / 16, 0, 0}},
			TexData:      0,
		}},
		TexData:        []vbsp.TexData{{Reflectivity: vec.Vec3{0.5, 0.5, 0.5}, Width: 64, Height: 64, ViewWidth: 64, ViewHeight: 64}},
		TexStringTable: []int32{0},
		TexStringData:  append([]byte(SampleMaterial), 0),
		Faces: []vbsp.Face{{
			PlaneNum:     0,
			FirstEdge:    0,
			NumEdges:     4,
			TexInfo:      0,
			DispInfo:     -1,
			Styles:       [4]uint8{0, vbsp.NoLightStyle, vbsp.NoLightStyle, vbsp.NoLightStyle},
			LightOfs:     0,
			Area:         128 * 128,
			LightmapSize: [2]int32{1, 1},
		}, {
			PlaneNum:  0,
			Side:      1,
			FirstEdge: 4,
			NumEdges:  4,
			TexInfo:   0,
			DispInfo:  0,
			Styles:    [4]uint8{vbsp.NoLightStyle, vbsp.NoLightStyle, vbsp.NoLightStyle, vbsp.NoLightStyle},
			LightOfs:  -1,
			Area:      128 * 128,
		}},
		Brushes: []vbsp.Brush{{FirstSide: 0, NumSides: 6, Contents: vbsp.ContentsSolid}},
		BrushSides: []vbsp.BrushSide{
			{PlaneNum: 1}, {PlaneNum: 2}, {PlaneNum: 3}, {PlaneNum: 4}, {PlaneNum: 5}, {PlaneNum: 6, Bevel: 1},
		},
		Nodes: []vbsp.NodeRecord{{
			PlaneNum: 0,
			Children: [2]int32{^0, ^1},
			Mins:     [3]int16{-64, -64, -64},
			Maxs:     [3]int16{64, 64, 64},
			NumFaces: 2,
		}},
		Leafs: []vbsp.LeafRecord{{
			LeafBase: vbsp.LeafBase{
				Contents:        vbsp.ContentsEmpty,
				Cluster:         0,
				AreaFlags:       vbsp.PackAreaFlags(1, 1),
				Mins:            [3]int16{-64, -64, 0},
				Maxs:            [3]int16{64, 64, 64},
				FirstLeafFace:   0,
				NumLeafFaces:    1,
				FirstLeafBrush:  0,
				NumLeafBrushes:  1,
				LeafWaterDataID: -1,
			},
		}, {
			LeafBase: vbsp.LeafBase{
				Contents:        vbsp.ContentsWater,
				Cluster:         1,
				AreaFlags:       vbsp.PackAreaFlags(1, 0),
				Mins:            [3]int16{-64, -64, -64},
				Maxs:            [3]int16{64, 64, 0},
				FirstLeafFace:   1,
				NumLeafFaces:    1,
				LeafWaterDataID: 0,
			},
		}},
		LeafFaces:   []uint16{0, 1},
		LeafBrushes: []uint16{0},
		Models: []vbsp.Model{{
			Mins:     vec.Vec3{-64, -64, -64},
			Maxs:     vec.Vec3{64, 64, 64},
			HeadNode: 0,
			NumFaces: 2,
		}},
		Areas: []vbsp.Area{{}, {}},
		DispInfos: []vbsp.DispInfo{{
			StartPosition: vec.Vec3{64, 64, 0},
			Power:         2,
			MapFace:       1,
		}},
		Lighting: []vbsp.ColorRGBExp32{
			{R: 1, G: 2, B: 4, Exponent: 0},
			{R: 1, G: 1, B: 1, Exponent: 3},
			{R: 128, G: 64, B: 32, Exponent: -5},
			{R: 0, G: 0, B: 0, Exponent: 0},
		},
		AmbientIndex: []vbsp.LeafAmbientIndex{
			{AmbientSampleCount: 1, FirstAmbientSample: 0},
			{AmbientSampleCount: 0, FirstAmbientSample: 1},
		},
		AmbientLighting: []vbsp.LeafAmbientLighting{{X: 128, Y: 128, Z: 128}},
		Vis: vbsp.NewVisibility(
			[]vbsp.ClusterSet{vbsp.NewClusterSet(2, 0, 1), vbsp.NewClusterSet(2, 1)},
			[]vbsp.ClusterSet{vbsp.NewClusterSet(2, 0, 1), vbsp.NewClusterSet(2, 0, 1)},
		),
		// points at the file magic
		GameLumps: []vbsp.GameLump{{ID: [4]byte{'p', 'r', 'p', 's'}, Version: 10, FileOfs: 0, FileLen: 4}},
		Pakfile:   Zip(map[string]string{SamplePakFile: "LightmappedGeneric\n"}, SamplePakFile),
	}
	for i := 0; i < vbsp.DispSize(2)*vbsp.DispSize(2); i++ {
		m.DispVerts = append(m.DispVerts, vbsp.DispVert{Vec: vec.Vec3{0, 0, 1}, Dist: 8, Alpha: 0})
	}
	return m
}

// SampleBytes is Sample(version).Bytes().
func SampleBytes(version int32) []byte {
	return Sample(version).Bytes()
}
