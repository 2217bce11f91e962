// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"github.com/chewxy/math32"

	"govbsp/math/vec"
)

// On-disk records. Field order and sizes follow the file layout exactly;
// padding is kept in named fields so encoding reproduces the input bytes.

type Plane struct {
	Normal vec.Vec3
	Dist   float32
	Type   int32 // 0-2: axial in X, Y, Z; 3-5: non axial, mostly X, Y, Z
}

type Edge struct {
	V [2]uint16
}

type TexInfo struct {
	TextureVecs  [2][4]float32
	LightmapVecs [2][4]float32
	Flags        SurfaceFlags
	TexData      int32
}

type TexData struct {
	Reflectivity      vec.Vec3
	NameStringTableID int32
	Width             int32
	Height            int32
	ViewWidth         int32
	ViewHeight        int32
}

type Face struct {
	PlaneNum        uint16
	Side            uint8
	OnNode          uint8
	FirstEdge       int32
	NumEdges        int16
	TexInfo         int16
	DispInfo        int16
	FogVolumeID     int16
	Styles          [4]uint8
	LightOfs        int32
	Area            float32
	LightmapMins    [2]int32
	LightmapSize    [2]int32
	OrigFace        int32
	NumPrims        uint16
	FirstPrimID     uint16
	SmoothingGroups uint32
}

type Brush struct {
	FirstSide int32
	NumSides  int32
	Contents  Contents
}

type BrushSide struct {
	PlaneNum uint16
	TexInfo  int16
	DispInfo int16
	Bevel    int16
}

type NodeRecord struct {
	PlaneNum  int32
	Children  [2]int32
	Mins      [3]int16
	Maxs      [3]int16
	FirstFace uint16
	NumFaces  uint16
	Area      int16
	Padding   int16
}

// LeafBase is the part of a leaf shared by all lump versions.
type LeafBase struct {
	Contents        Contents
	Cluster         int16
	AreaFlags       uint16 // area: low 9 bits, flags: high 7 bits
	Mins            [3]int16
	Maxs            [3]int16
	FirstLeafFace   uint16
	NumLeafFaces    uint16
	FirstLeafBrush  uint16
	NumLeafBrushes  uint16
	LeafWaterDataID int16
}

const (
	leafAreaBits = 9
	leafAreaMask = 1<<leafAreaBits - 1
	leafFlagMask = 0x7f
)

func (l LeafBase) Area() int {
	return int(l.AreaFlags & leafAreaMask)
}

func (l LeafBase) Flags() int {
	return int(l.AreaFlags>>leafAreaBits) & leafFlagMask
}

// PackAreaFlags is the inverse of Area and Flags.
func PackAreaFlags(area, flags int) uint16 {
	return uint16(area&leafAreaMask) | uint16(flags&leafFlagMask)<<leafAreaBits
}

// LeafRecord is a leaf as stored in lump version 0. Version 1 drops Ambient.
type LeafRecord struct {
	LeafBase
	Ambient CompressedLightCube
	Padding [2]byte
}

type leafV1 struct {
	LeafBase
	Padding [2]byte
}

type ColorRGBExp32 struct {
	R, G, B  uint8
	Exponent int8
}

// Vec returns the linear color, channel * 2^exponent.
func (c ColorRGBExp32) Vec() vec.Vec3 {
	e := int(c.Exponent)
	return vec.Vec3{
		math32.Ldexp(float32(c.R), e),
		math32.Ldexp(float32(c.G), e),
		math32.Ldexp(float32(c.B), e),
	}
}

// CompressedLightCube holds one color per axis direction (+X -X +Y -Y +Z -Z).
type CompressedLightCube struct {
	Color [6]ColorRGBExp32
}

type Model struct {
	Mins      vec.Vec3
	Maxs      vec.Vec3
	Origin    vec.Vec3
	HeadNode  int32
	FirstFace int32
	NumFaces  int32
}

type Area struct {
	NumAreaPortals  int32
	FirstAreaPortal int32
}

type AreaPortal struct {
	PortalKey           uint16
	OtherArea           uint16
	FirstClipPortalVert uint16
	NumClipPortalVerts  uint16
	PlaneNum            int32
}

type DispInfo struct {
	StartPosition               vec.Vec3
	DispVertStart               int32
	DispTriStart                int32
	Power                       int32
	MinTess                     int32
	SmoothingAngle              float32
	Contents                    Contents
	MapFace                     uint16
	Padding                     [2]byte
	LightmapAlphaStart          int32
	LightmapSamplePositionStart int32
	EdgeNeighbors               [48]byte
	CornerNeighbors             [40]byte
	AllowedVerts                [10]uint32
}

type DispVert struct {
	Vec   vec.Vec3
	Dist  float32
	Alpha float32
}

type LeafAmbientIndex struct {
	AmbientSampleCount uint16
	FirstAmbientSample uint16
}

type LeafAmbientLighting struct {
	Cube CompressedLightCube
	X    uint8
	Y    uint8
	Z    uint8
	Pad  uint8
}

// GameLump is one entry of the game lump directory. Offsets are file relative.
type GameLump struct {
	ID      [4]byte
	Flags   uint16
	Version uint16
	FileOfs int32
	FileLen int32
}
