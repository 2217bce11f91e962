// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"slices"

	"govbsp/math/vec"
)

const (
	MaxLightStyles = 4
	// style slot not in use
	NoLightStyle = 255
	// bump mapped faces store one unbumped and three bumped maps per style
	bumpLightmaps = 4
)

// NumStyles returns the number of light style slots in use.
func (s *Surface) NumStyles() int {
	n := 0
	for n < MaxLightStyles && s.Styles[n] != NoLightStyle {
		n++
	}
	return n
}

// Lightmap returns the linear luxel colors of light style slot style of s.
// Unlit surfaces have no samples and return nil.
func (m *Map) Lightmap(s *Surface, style int) ([]vec.Vec3, error) {
	if s.LightOfs < 0 {
		return nil, nil
	}
	if len(m.Lighting) == 0 {
		return nil, &LumpNotFoundError{Lump: LumpLighting, ID: LumpID(LumpLighting)}
	}
	if style < 0 || style >= s.NumStyles() {
		return nil, &IndexRangeError{What: "face", Owner: s.Face, Field: "style", Index: int64(style), Limit: s.NumStyles()}
	}
	n := s.LightmapSamples()
	maps := 1
	if s.TexInfo >= 0 && m.TexInfos[s.TexInfo].Flags&SurfaceBumpLight != 0 {
		maps = bumpLightmaps
	}
	start := int64(s.LightOfs)/4 + int64(style*maps*n)
	if end := start + int64(n); end > int64(len(m.Lighting)) {
		return nil, &IndexRangeError{What: "face", Owner: s.Face, Field: "lighting", Index: end - 1, Limit: len(m.Lighting)}
	}
	out := make([]vec.Vec3, n)
	for i, c := range m.Lighting[start : start+int64(n)] {
		out[i] = c.Vec()
	}
	return out, nil
}

// AmbientCube returns the ambient light samples stored for a leaf.
func (m *Map) AmbientCube(ref LeafRef) ([]LeafAmbientLighting, error) {
	if _, err := m.Tree.Leaf(ref); err != nil {
		return nil, err
	}
	if int(ref) >= len(m.AmbientIndex) {
		if m.Tree.leafs[ref].Ambient != (CompressedLightCube{}) {
			return []LeafAmbientLighting{{Cube: m.Tree.leafs[ref].Ambient}}, nil
		}
		return nil, &LumpNotFoundError{Lump: LumpLeafAmbientIndex, ID: LumpID(LumpLeafAmbientIndex)}
	}
	idx := m.AmbientIndex[ref]
	first, end := int(idx.FirstAmbientSample), int(idx.FirstAmbientSample)+int(idx.AmbientSampleCount)
	if end > len(m.AmbientLighting) {
		return nil, &IndexRangeError{What: "leaf", Owner: int(ref), Field: "ambient", Index: int64(end - 1), Limit: len(m.AmbientLighting)}
	}
	return slices.Clone(m.AmbientLighting[first:end]), nil
}
