// SPDX-License-Identifier: GPL-2.0-or-later

package report

import (
	"io"
	"log/slog"
	"testing"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"govbsp/vbsp"
	"govbsp/vbsp/vbsptest"
)

func load(t *testing.T) *vbsp.Map {
	t.Helper()
	m, err := vbsp.Load("sample.bsp", vbsptest.SampleBytes(20), vbsp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestJSON(t *testing.T) {
	m := load(t)
	b, err := JSON(m)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var s structpb.Struct
	if err := protojson.Unmarshal(b, &s); err != nil {
		t.Fatalf("protojson.Unmarshal: %v", err)
	}
	f := s.GetFields()
	if got := f["name"].GetStringValue(); got != "sample.bsp" {
		t.Errorf("name = %q, want sample.bsp", got)
	}
	if got := f["version"].GetNumberValue(); got != 20 {
		t.Errorf("version = %v, want 20", got)
	}
	counts := f["counts"].GetStructValue().GetFields()
	tests := []struct {
		key  string
		want float64
	}{
		{"planes", 7},
		{"faces", 2},
		{"leafs", 2},
		{"clusters", 2},
		{"displacements", 1},
		{"gamelumps", 1},
	}
	for _, tc := range tests {
		if got := counts[tc.key].GetNumberValue(); got != tc.want {
			t.Errorf("counts.%s = %v, want %v", tc.key, got, tc.want)
		}
	}
	mats := f["materials"].GetListValue().GetValues()
	if len(mats) != 1 || mats[0].GetStringValue() != vbsptest.SampleMaterial {
		t.Errorf("materials = %v", mats)
	}
	if got := f["checksum"].GetStringValue(); len(got) != 8 {
		t.Errorf("checksum = %q, want 8 hex digits", got)
	}
}

func TestLumps(t *testing.T) {
	m := load(t)
	lumps := Lumps(m.Directory())
	found := false
	for _, l := range lumps {
		e := l.(map[string]interface{})
		if e["name"] == "planes" {
			found = true
			if e["length"] != int64(7*20) {
				t.Errorf("planes length = %v, want 140", e["length"])
			}
		}
		if e["length"] == int64(0) {
			t.Errorf("empty lump %v listed", e["name"])
		}
	}
	if !found {
		t.Errorf("Lumps() has no planes: %v", lumps)
	}
}

func TestLeaf(t *testing.T) {
	m := load(t)
	s, err := Leaf(m, 1)
	if err != nil {
		t.Fatal(err)
	}
	f := s.GetFields()
	if got := f["contents"].GetStringValue(); got != "water" {
		t.Errorf("contents = %q, want water", got)
	}
	if faces := f["faces"].GetListValue().GetValues(); len(faces) != 1 || faces[0].GetNumberValue() != 1 {
		t.Errorf("faces = %v, want [1]", faces)
	}
	if _, err := Leaf(m, 5); err == nil {
		t.Errorf("Leaf(5) = nil error")
	}
}

func TestClusters(t *testing.T) {
	s, err := Clusters(0, vbsp.NewClusterSet(10, 0, 3, 9))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.GetFields()["count"].GetNumberValue(); got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
}
