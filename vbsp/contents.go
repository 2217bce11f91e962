// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"strings"
)

// Contents is the content bitmask of brushes and leafs.
type Contents int32

const (
	ContentsEmpty Contents = 0
	ContentsSolid Contents = 1 << iota >> 1
	ContentsWindow
	ContentsAux
	ContentsGrate
	ContentsSlime
	ContentsWater
	ContentsMist
	ContentsOpaque
	ContentsTestFogVolume
	_
	_
	ContentsTeam1
	ContentsTeam2
	ContentsIgnoreNodrawOpaque
	ContentsMoveable
	ContentsAreaPortal
	ContentsPlayerClip
	ContentsMonsterClip
	ContentsCurrent0
	ContentsCurrent90
	ContentsCurrent180
	ContentsCurrent270
	ContentsCurrentUp
	ContentsCurrentDown
	ContentsOrigin
	ContentsMonster
	ContentsDebris
	ContentsDetail
	ContentsTranslucent
	ContentsLadder
	ContentsHitbox
)

var contentNames = []struct {
	c    Contents
	name string
}{
	{ContentsSolid, "solid"},
	{ContentsWindow, "window"},
	{ContentsAux, "aux"},
	{ContentsGrate, "grate"},
	{ContentsSlime, "slime"},
	{ContentsWater, "water"},
	{ContentsMist, "mist"},
	{ContentsOpaque, "opaque"},
	{ContentsTestFogVolume, "testfogvolume"},
	{ContentsTeam1, "team1"},
	{ContentsTeam2, "team2"},
	{ContentsIgnoreNodrawOpaque, "ignorenodrawopaque"},
	{ContentsMoveable, "moveable"},
	{ContentsAreaPortal, "areaportal"},
	{ContentsPlayerClip, "playerclip"},
	{ContentsMonsterClip, "monsterclip"},
	{ContentsCurrent0, "current_0"},
	{ContentsCurrent90, "current_90"},
	{ContentsCurrent180, "current_180"},
	{ContentsCurrent270, "current_270"},
	{ContentsCurrentUp, "current_up"},
	{ContentsCurrentDown, "current_down"},
	{ContentsOrigin, "origin"},
	{ContentsMonster, "monster"},
	{ContentsDebris, "debris"},
	{ContentsDetail, "detail"},
	{ContentsTranslucent, "translucent"},
	{ContentsLadder, "ladder"},
	{ContentsHitbox, "hitbox"},
}

func (c Contents) Has(f Contents) bool {
	return c&f == f
}

func (c Contents) String() string {
	if c == ContentsEmpty {
		return "empty"
	}
	var parts []string
	for _, n := range contentNames {
		if c&n.c != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// SurfaceFlags are the texinfo flags (SURF_*).
type SurfaceFlags int32

const (
	SurfaceLight SurfaceFlags = 1 << iota
	SurfaceSky2D
	SurfaceSky
	SurfaceWarp
	SurfaceTrans
	SurfaceNoPortal
	SurfaceTrigger
	SurfaceNoDraw
	SurfaceHint
	SurfaceSkip
	SurfaceNoLight
	SurfaceBumpLight
	SurfaceNoShadows
	SurfaceNoDecals
	SurfaceNoChop
	SurfaceHitbox
)
