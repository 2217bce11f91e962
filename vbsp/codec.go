// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"bytes"
	"encoding/binary"

	"govbsp/math/vec"
)

// decodeRecords reads len(data)/size little-endian records of type T.
func decodeRecords[T any](lump LumpMeaning, data []byte) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if len(data)%size != 0 {
		return nil, &TruncatedLumpError{Lump: lump, RecordSize: size, Length: len(data)}
	}
	out := make([]T, len(data)/size)
	if len(out) == 0 {
		return out, nil
	}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeRecords[T any](recs []T) []byte {
	var buf bytes.Buffer
	if len(recs) == 0 {
		return nil
	}
	// records are fixed size, writing to a bytes.Buffer can not fail
	_ = binary.Write(&buf, binary.LittleEndian, recs)
	return buf.Bytes()
}

func DecodePlanes(data []byte) ([]Plane, error) {
	return decodeRecords[Plane](LumpPlanes, data)
}

func EncodePlanes(p []Plane) []byte {
	return encodeRecords(p)
}

func DecodeVertexes(data []byte) ([]vec.Vec3, error) {
	return decodeRecords[vec.Vec3](LumpVertexes, data)
}

func EncodeVertexes(v []vec.Vec3) []byte {
	return encodeRecords(v)
}

func DecodeEdges(data []byte) ([]Edge, error) {
	return decodeRecords[Edge](LumpEdges, data)
}

func EncodeEdges(e []Edge) []byte {
	return encodeRecords(e)
}

// DecodeSurfEdges returns signed edge references; negative ones walk the edge backwards.
func DecodeSurfEdges(data []byte) ([]int32, error) {
	return decodeRecords[int32](LumpSurfEdges, data)
}

func EncodeSurfEdges(s []int32) []byte {
	return encodeRecords(s)
}

func DecodeTexInfos(data []byte) ([]TexInfo, error) {
	return decodeRecords[TexInfo](LumpTexInfo, data)
}

func EncodeTexInfos(t []TexInfo) []byte {
	return encodeRecords(t)
}

func DecodeTexData(data []byte) ([]TexData, error) {
	return decodeRecords[TexData](LumpTexData, data)
}

func EncodeTexData(t []TexData) []byte {
	return encodeRecords(t)
}

func DecodeTexDataStringTable(data []byte) ([]int32, error) {
	return decodeRecords[int32](LumpTexDataStringTable, data)
}

func EncodeTexDataStringTable(t []int32) []byte {
	return encodeRecords(t)
}

func DecodeFaces(data []byte) ([]Face, error) {
	return decodeRecords[Face](LumpFaces, data)
}

func EncodeFaces(f []Face) []byte {
	return encodeRecords(f)
}

func DecodeBrushes(data []byte) ([]Brush, error) {
	return decodeRecords[Brush](LumpBrushes, data)
}

func EncodeBrushes(b []Brush) []byte {
	return encodeRecords(b)
}

func DecodeBrushSides(data []byte) ([]BrushSide, error) {
	return decodeRecords[BrushSide](LumpBrushSides, data)
}

func EncodeBrushSides(s []BrushSide) []byte {
	return encodeRecords(s)
}

func DecodeNodes(data []byte) ([]NodeRecord, error) {
	return decodeRecords[NodeRecord](LumpNodes, data)
}

func EncodeNodes(n []NodeRecord) []byte {
	return encodeRecords(n)
}

// DecodeLeafs decodes a leaf lump of the given lump version. Version 0 leafs
// carry their ambient light cube inline, later versions do not.
func DecodeLeafs(version int32, data []byte) ([]LeafRecord, error) {
	if version == 0 {
		return decodeRecords[LeafRecord](LumpLeafs, data)
	}
	v1, err := decodeRecords[leafV1](LumpLeafs, data)
	if err != nil {
		return nil, err
	}
	out := make([]LeafRecord, len(v1))
	for i, l := range v1 {
		out[i] = LeafRecord{LeafBase: l.LeafBase, Padding: l.Padding}
	}
	return out, nil
}

func EncodeLeafs(version int32, l []LeafRecord) []byte {
	if version == 0 {
		return encodeRecords(l)
	}
	v1 := make([]leafV1, len(l))
	for i, r := range l {
		v1[i] = leafV1{LeafBase: r.LeafBase, Padding: r.Padding}
	}
	return encodeRecords(v1)
}

func DecodeLeafFaces(data []byte) ([]uint16, error) {
	return decodeRecords[uint16](LumpLeafFaces, data)
}

func EncodeLeafFaces(l []uint16) []byte {
	return encodeRecords(l)
}

func DecodeLeafBrushes(data []byte) ([]uint16, error) {
	return decodeRecords[uint16](LumpLeafBrushes, data)
}

func EncodeLeafBrushes(l []uint16) []byte {
	return encodeRecords(l)
}

func DecodeModels(data []byte) ([]Model, error) {
	return decodeRecords[Model](LumpModels, data)
}

func EncodeModels(m []Model) []byte {
	return encodeRecords(m)
}

func DecodeAreas(data []byte) ([]Area, error) {
	return decodeRecords[Area](LumpAreas, data)
}

func EncodeAreas(a []Area) []byte {
	return encodeRecords(a)
}

func DecodeAreaPortals(data []byte) ([]AreaPortal, error) {
	return decodeRecords[AreaPortal](LumpAreaPortals, data)
}

func EncodeAreaPortals(a []AreaPortal) []byte {
	return encodeRecords(a)
}

func DecodeDispInfos(data []byte) ([]DispInfo, error) {
	return decodeRecords[DispInfo](LumpDispInfo, data)
}

func EncodeDispInfos(d []DispInfo) []byte {
	return encodeRecords(d)
}

func DecodeDispVerts(data []byte) ([]DispVert, error) {
	return decodeRecords[DispVert](LumpDispVerts, data)
}

func EncodeDispVerts(d []DispVert) []byte {
	return encodeRecords(d)
}

func DecodeLeafAmbientIndices(data []byte) ([]LeafAmbientIndex, error) {
	return decodeRecords[LeafAmbientIndex](LumpLeafAmbientIndex, data)
}

func EncodeLeafAmbientIndices(l []LeafAmbientIndex) []byte {
	return encodeRecords(l)
}

func DecodeLeafAmbientLighting(data []byte) ([]LeafAmbientLighting, error) {
	return decodeRecords[LeafAmbientLighting](LumpLeafAmbientLighting, data)
}

func EncodeLeafAmbientLighting(l []LeafAmbientLighting) []byte {
	return encodeRecords(l)
}

// DecodeLighting reads lightmap samples.
func DecodeLighting(data []byte) ([]ColorRGBExp32, error) {
	return decodeRecords[ColorRGBExp32](LumpLighting, data)
}

func EncodeLighting(c []ColorRGBExp32) []byte {
	return encodeRecords(c)
}
