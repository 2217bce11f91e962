// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"fmt"
)

// HeaderLumps is the fixed number of directory entries.
const HeaderLumps = 64

// LumpID is a directory slot. What the slot holds depends on the format version.
type LumpID int

// LumpMeaning is what a directory slot holds. The first 64 values share the
// number of the slot they live in for version 19/20 files.
type LumpMeaning int

const (
	LumpEntities LumpMeaning = iota
	LumpPlanes
	LumpTexData
	LumpVertexes
	LumpVisibility
	LumpNodes
	LumpTexInfo
	LumpFaces
	LumpLighting
	LumpOcclusion
	LumpLeafs
	LumpFaceIDs
	LumpEdges
	LumpSurfEdges
	LumpModels
	LumpWorldLights
	LumpLeafFaces
	LumpLeafBrushes
	LumpBrushes
	LumpBrushSides
	LumpAreas
	LumpAreaPortals
	LumpPortals
	LumpClusters
	LumpPortalVerts
	LumpClusterPortals
	LumpDispInfo
	LumpOriginalFaces
	LumpPhysDisp
	LumpPhysCollide
	LumpVertNormals
	LumpVertNormalIndices
	LumpDispLightmapAlphas
	LumpDispVerts
	LumpDispLightmapSamplePositions
	LumpGameLump
	LumpLeafWaterData
	LumpPrimitives
	LumpPrimVerts
	LumpPrimIndices
	LumpPakfile
	LumpClipPortalVerts
	LumpCubemaps
	LumpTexDataStringData
	LumpTexDataStringTable
	LumpOverlays
	LumpLeafMinDistToWater
	LumpFaceMacroTextureInfo
	LumpDispTris
	LumpPhysCollideSurface
	LumpWaterOverlays
	LumpLeafAmbientIndexHDR
	LumpLeafAmbientIndex
	LumpLightingHDR
	LumpWorldLightsHDR
	LumpLeafAmbientLightingHDR
	LumpLeafAmbientLighting
	LumpXZipPakfile
	LumpFacesHDR
	LumpMapFlags
	LumpOverlayFades
	LumpOverlaySystemLevels
	LumpPhysLevel
	LumpDispMultiBlend

	// slots 22-25 and 49 from version 21 on
	LumpPropCollision
	LumpPropHulls
	LumpPropHullVerts
	LumpPropTris
	LumpPropBlob

	LumpUnused
)

var lumpNames = [...]string{
	"entities", "planes", "texdata", "vertexes", "visibility", "nodes", "texinfo", "faces",
	"lighting", "occlusion", "leafs", "faceids", "edges", "surfedges", "models", "worldlights",
	"leaffaces", "leafbrushes", "brushes", "brushsides", "areas", "areaportals", "portals",
	"clusters", "portalverts", "clusterportals", "dispinfo", "originalfaces", "physdisp",
	"physcollide", "vertnormals", "vertnormalindices", "disp_lightmap_alphas", "disp_verts",
	"disp_lightmap_sample_positions", "game_lump", "leafwaterdata", "primitives", "primverts",
	"primindices", "pakfile", "clipportalverts", "cubemaps", "texdata_string_data",
	"texdata_string_table", "overlays", "leafmindisttowater", "face_macro_texture_info",
	"disp_tris", "physcollidesurface", "wateroverlays", "leaf_ambient_index_hdr",
	"leaf_ambient_index", "lighting_hdr", "worldlights_hdr", "leaf_ambient_lighting_hdr",
	"leaf_ambient_lighting", "xzippakfile", "faces_hdr", "map_flags", "overlay_fades",
	"overlay_system_levels", "physlevel", "disp_multiblend",
	"propcollision", "prophulls", "prophullverts", "proptris", "prop_blob",
	"unused",
}

func (m LumpMeaning) String() string {
	if m < 0 || int(m) >= len(lumpNames) {
		return fmt.Sprintf("lump(%d)", int(m))
	}
	return lumpNames[m]
}

// Meaning maps a directory slot to what it holds for the given format version.
func Meaning(formatVersion int32, id LumpID) LumpMeaning {
	switch {
	case id < 0 || id >= HeaderLumps:
		return LumpUnused
	case id >= 22 && id <= 25 && formatVersion >= 21:
		return LumpPropCollision + LumpMeaning(id-22)
	case id == 49 && formatVersion >= 21:
		return LumpPropBlob
	case id == 28 && formatVersion < 20:
		return LumpUnused
	case id >= 50 && id <= 61 && formatVersion < 20:
		return LumpUnused
	case id >= 62 && formatVersion < 21:
		return LumpUnused
	}
	return LumpMeaning(id)
}
