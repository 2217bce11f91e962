// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp_test

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/pkg/errors"

	"govbsp/vbsp"
)

// visLump builds a lump of n clusters whose rows all decode from row.
func visLump(n int, row []byte) []byte {
	b := make([]byte, 4+8*n, 4+8*n+len(row))
	binary.LittleEndian.PutUint32(b, uint32(n))
	for c := 0; c < n; c++ {
		binary.LittleEndian.PutUint32(b[4+8*c:], uint32(4+8*n))
		binary.LittleEndian.PutUint32(b[8+8*c:], uint32(4+8*n))
	}
	return append(b, row...)
}

func TestVisDecompress(t *testing.T) {
	in := []byte{0x7, 0x0, 0x5, 0x5, 0x0, 0x3, 0x1, 0x1}
	want := []byte{0x7, 0x0, 0x0, 0x0, 0x0, 0x0, 0x5, 0x0, 0x0, 0x0, 0x1, 0x1}
	v, err := vbsp.DecodeVisibility(visLump(12*8, in))
	if err != nil {
		t.Fatalf("DecodeVisibility: %v", err)
	}
	got, err := v.ClustersVisibleFrom(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), want) {
		t.Errorf("Decompress(%v) = %v, want %v", in, got.Bytes(), want)
	}
	if got.Len() != 7 {
		t.Errorf("Len() = %d, want 7", got.Len())
	}
	clusters := got.Clusters()
	wantClusters := []vbsp.ClusterID{0, 1, 2, 48, 50, 80, 88}
	if len(clusters) != len(wantClusters) {
		t.Fatalf("Clusters() = %v, want %v", clusters, wantClusters)
	}
	for i := range clusters {
		if clusters[i] != wantClusters[i] {
			t.Errorf("Clusters() = %v, want %v", clusters, wantClusters)
			break
		}
	}
	for _, c := range []vbsp.ClusterID{3, 47, 95, 96, -1} {
		if got.Has(c) {
			t.Errorf("Has(%d) = true, want false", c)
		}
	}
}

func TestVisRunPastRow(t *testing.T) {
	// the zero run covers more bytes than the row has left
	v, err := vbsp.DecodeVisibility(visLump(16, []byte{0x1, 0x0, 0x9}))
	if err != nil {
		t.Fatalf("DecodeVisibility: %v", err)
	}
	s, err := v.ClustersVisibleFrom(3)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || !s.Has(0) {
		t.Errorf("ClustersVisibleFrom(3) = %v, want [0]", s.Clusters())
	}
}

func TestVisTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{1, 0}},
		{"negative count", []byte{0xff, 0xff, 0xff, 0xff}},
		{"offsets missing", visLump(4, nil)[:20]},
		{"row ends in zero", visLump(16, []byte{0x1, 0x0})},
		{"row too short", visLump(24, []byte{0x1, 0x1})},
		{"row missing", visLump(8, nil)},
	}
	for _, tc := range tests {
		_, err := vbsp.DecodeVisibility(tc.data)
		var te *vbsp.TruncatedVisibilityError
		if !errors.As(err, &te) {
			t.Errorf("%s: DecodeVisibility = %v, want TruncatedVisibilityError", tc.name, err)
		}
	}
}

func TestVisEmpty(t *testing.T) {
	v, err := vbsp.DecodeVisibility(nil)
	if err != nil {
		t.Fatalf("DecodeVisibility(nil) = %v", err)
	}
	if v.NumClusters() != 0 {
		t.Errorf("NumClusters() = %d, want 0", v.NumClusters())
	}
	_, err = v.ClustersVisibleFrom(0)
	var nf *vbsp.LumpNotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("ClustersVisibleFrom(0) = %v, want LumpNotFoundError", err)
	}
}

func TestVisQueryRange(t *testing.T) {
	v, err := vbsp.DecodeVisibility(visLump(8, []byte{0xff}))
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []vbsp.ClusterID{-1, 8} {
		_, err := v.ClustersAudibleFrom(c)
		var ie *vbsp.IndexRangeError
		if !errors.As(err, &ie) {
			t.Errorf("ClustersAudibleFrom(%d) = %v, want IndexRangeError", c, err)
		}
	}
	// a well formed table has every cluster visible from itself
	for c := vbsp.ClusterID(0); c < 8; c++ {
		s, err := v.ClustersVisibleFrom(c)
		if err != nil || !s.Has(c) {
			t.Errorf("ClustersVisibleFrom(%d).Has(%d) = false, %v", c, c, err)
		}
	}
}

func TestVisRoundTrip(t *testing.T) {
	pvs := []vbsp.ClusterSet{
		vbsp.NewClusterSet(20, 0, 1, 19),
		vbsp.NewClusterSet(20, 1),
		vbsp.NewClusterSet(20),
	}
	for len(pvs) < 20 {
		pvs = append(pvs, vbsp.NewClusterSet(20, vbsp.ClusterID(len(pvs))))
	}
	in := vbsp.NewVisibility(pvs, nil)
	out, err := vbsp.DecodeVisibility(vbsp.EncodeVisibility(in))
	if err != nil {
		t.Fatalf("DecodeVisibility(EncodeVisibility()) = %v", err)
	}
	for c := vbsp.ClusterID(0); c < 20; c++ {
		got, _ := out.ClustersVisibleFrom(c)
		if !bytes.Equal(got.Bytes(), pvs[c].Bytes()) {
			t.Errorf("cluster %d: %v, want %v", c, got.Clusters(), pvs[c].Clusters())
		}
		pas, _ := out.ClustersAudibleFrom(c)
		if !bytes.Equal(pas.Bytes(), pvs[c].Bytes()) {
			t.Errorf("cluster %d pas: %v, want %v", c, pas.Clusters(), pvs[c].Clusters())
		}
	}
}

func TestVisSharedRowsStayCompressed(t *testing.T) {
	const n = 16000
	// clusters 0, 2 and n-1 set, 1998 zero bytes in between
	row := []byte{0x05}
	for i := 0; i < 7; i++ {
		row = append(row, 0x00, 0xff)
	}
	row = append(row, 0x00, 0xd5, 0x80)
	lump := visLump(n, row)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	v, err := vbsp.DecodeVisibility(lump)
	runtime.ReadMemStats(&after)
	if err != nil {
		t.Fatalf("DecodeVisibility: %v", err)
	}
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 4<<20 {
		t.Errorf("DecodeVisibility of a %d byte lump allocated %d bytes", len(lump), grown)
	}
	if v.NumClusters() != n {
		t.Fatalf("NumClusters() = %d, want %d", v.NumClusters(), n)
	}
	for _, c := range []vbsp.ClusterID{0, 7999, n - 1} {
		s, err := v.ClustersAudibleFrom(c)
		if err != nil {
			t.Fatal(err)
		}
		if s.Len() != 3 || !s.Has(0) || !s.Has(2) || !s.Has(n-1) || s.Has(1) || s.Has(n-2) {
			t.Errorf("ClustersAudibleFrom(%d) = %v, want [0 2 %d]", c, s.Clusters(), n-1)
		}
	}
}
