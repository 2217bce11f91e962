// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp_test

import (
	"testing"

	"github.com/pkg/errors"

	"govbsp/vbsp"
	"govbsp/vbsp/vbsptest"
)

func TestHeaderSize(t *testing.T) {
	if vbsp.HeaderSize != 1036 {
		t.Errorf("HeaderSize = %d, want 1036", vbsp.HeaderSize)
	}
}

func TestOpen(t *testing.T) {
	b := vbsptest.SampleBytes(20)
	d, err := vbsp.Open(b)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Version() != 20 {
		t.Errorf("Version() = %d, want 20", d.Version())
	}
	if got := d.Header().Revision; got != 7 {
		t.Errorf("Revision = %d, want 7", got)
	}
	if d.Size() != len(b) {
		t.Errorf("Size() = %d, want %d", d.Size(), len(b))
	}
	planes, err := d.Lump(vbsp.LumpID(vbsp.LumpPlanes))
	if err != nil {
		t.Fatalf("Lump(planes): %v", err)
	}
	if len(planes)%20 != 0 {
		t.Errorf("len(planes) = %d, not a multiple of 20", len(planes))
	}
	if cap(planes) != len(planes) {
		t.Errorf("cap(planes) = %d, want %d", cap(planes), len(planes))
	}
}

func TestOpenErrors(t *testing.T) {
	badMagic := vbsptest.SampleBytes(20)
	copy(badMagic, "BADF")
	pastEOF := vbsptest.SampleBytes(20)
	pastEOF = pastEOF[:len(pastEOF)-4]
	tests := []struct {
		name string
		data []byte
		opts []vbsp.Option
	}{
		{"bad magic", badMagic, nil},
		{"too old", vbsptest.SampleBytes(18), nil},
		{"too new", vbsptest.SampleBytes(22), nil},
		{"narrow range", vbsptest.SampleBytes(21), []vbsp.Option{vbsp.WithVersionRange(19, 20)}},
		{"lump past end", pastEOF, nil},
		{"short header", make([]byte, 100), nil},
		{"empty", nil, nil},
	}
	for _, tc := range tests {
		_, err := vbsp.Open(tc.data, tc.opts...)
		var fe *vbsp.FormatError
		if !errors.As(err, &fe) {
			t.Errorf("%s: Open() = %v, want FormatError", tc.name, err)
		}
	}
}

func TestOpenVersionRange(t *testing.T) {
	if _, err := vbsp.Open(vbsptest.SampleBytes(18), vbsp.WithVersionRange(17, 21)); err != nil {
		t.Errorf("Open(v18, 17-21) = %v, want nil", err)
	}
}

func TestLumpNotFound(t *testing.T) {
	d, err := vbsp.Open(vbsptest.SampleBytes(20))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.LumpFor(vbsp.LumpOcclusion)
	var nf *vbsp.LumpNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("LumpFor(occlusion) = %v, want LumpNotFoundError", err)
	}
	if nf.Lump != vbsp.LumpOcclusion || nf.ID != 9 {
		t.Errorf("LumpNotFoundError = %+v, want occlusion in slot 9", nf)
	}
	if _, err := d.LumpFor(vbsp.LumpPropBlob); err == nil {
		t.Errorf("LumpFor(prop_blob) in v20 = nil, want error")
	}
	if _, err := d.Entry(64); err == nil {
		t.Errorf("Entry(64) = nil, want error")
	}
}

func TestMeaning(t *testing.T) {
	tests := []struct {
		version int32
		id      vbsp.LumpID
		want    vbsp.LumpMeaning
	}{
		{20, 1, vbsp.LumpPlanes},
		{19, 10, vbsp.LumpLeafs},
		{19, 22, vbsp.LumpPortals},
		{20, 25, vbsp.LumpClusterPortals},
		{21, 22, vbsp.LumpPropCollision},
		{21, 23, vbsp.LumpPropHulls},
		{21, 24, vbsp.LumpPropHullVerts},
		{21, 25, vbsp.LumpPropTris},
		{20, 49, vbsp.LumpPhysCollideSurface},
		{21, 49, vbsp.LumpPropBlob},
		{19, 28, vbsp.LumpUnused},
		{20, 28, vbsp.LumpPhysDisp},
		{19, 53, vbsp.LumpUnused},
		{20, 53, vbsp.LumpLightingHDR},
		{20, 62, vbsp.LumpUnused},
		{21, 62, vbsp.LumpPhysLevel},
		{21, 63, vbsp.LumpDispMultiBlend},
		{21, 64, vbsp.LumpUnused},
		{21, -1, vbsp.LumpUnused},
	}
	for _, tc := range tests {
		if got := vbsp.Meaning(tc.version, tc.id); got != tc.want {
			t.Errorf("Meaning(%d, %d) = %v, want %v", tc.version, tc.id, got, tc.want)
		}
	}
}

func TestDirectoryMeaning(t *testing.T) {
	d, err := vbsp.Open(vbsptest.SampleBytes(21))
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Meaning(22); got != vbsp.LumpPropCollision {
		t.Errorf("Meaning(22) = %v, want propcollision", got)
	}
	if id, ok := d.ID(vbsp.LumpPropTris); !ok || id != 25 {
		t.Errorf("ID(proptris) = %d, %v, want 25, true", id, ok)
	}
	if _, ok := d.ID(vbsp.LumpPortals); ok {
		t.Errorf("ID(portals) in v21 found, want none")
	}
}
