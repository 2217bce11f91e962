// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"govbsp/filesystem"
	"govbsp/model"
	"govbsp/vbsp"
	"govbsp/vbsp/vbsptest"
)

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	maps := filepath.Join(dir, "maps")
	if err := os.MkdirAll(maps, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"sample.bsp": vbsptest.SampleBytes(20),
		"junk.bsp":   []byte("not a map at all"),
		"broken.bsp": vbsptest.SampleBytes(20)[:vbsp.HeaderSize],
	}
	for n, b := range files {
		if err := os.WriteFile(filepath.Join(maps, n), b, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := filesystem.UseDirs(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { filesystem.UseDirs() })

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	return NewServer(model.NewCache(4, model.WithCacheLogger(log)), log), &logs
}

func get(t *testing.T, s http.Handler, url string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	body, _ := io.ReadAll(rec.Body)
	var v map[string]any
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("GET %s: bad json %q: %v", url, body, err)
	}
	return rec.Code, v
}

func TestHealth(t *testing.T) {
	s, logs := newTestServer(t)
	code, v := get(t, s, "/health")
	if code != http.StatusOK || v["status"] != "ok" {
		t.Errorf("GET /health = %d %v", code, v)
	}
	if !bytes.Contains(logs.Bytes(), []byte("path=/health")) {
		t.Errorf("request not logged: %s", logs.String())
	}
}

func TestList(t *testing.T) {
	s, _ := newTestServer(t)
	code, v := get(t, s, "/maps")
	if code != http.StatusOK {
		t.Fatalf("GET /maps = %d %v", code, v)
	}
	got := v["maps"].([]any)
	want := []string{"broken", "junk", "sample"}
	if len(got) != len(want) {
		t.Fatalf("GET /maps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GET /maps = %v, want %v", got, want)
			break
		}
	}
}

func TestMap(t *testing.T) {
	s, _ := newTestServer(t)
	code, v := get(t, s, "/maps/sample")
	if code != http.StatusOK {
		t.Fatalf("GET /maps/sample = %d %v", code, v)
	}
	if v["name"] != "maps/sample.bsp" || v["version"] != float64(20) {
		t.Errorf("GET /maps/sample = %v", v)
	}
	get(t, s, "/maps/sample.bsp")
	hits, misses := s.cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("cache stats = %d hits %d misses, want 1 1", hits, misses)
	}
}

func TestLocate(t *testing.T) {
	s, logs := newTestServer(t)
	tests := []struct {
		url      string
		leaf     float64
		contents string
		point    string
		inside   bool
	}{
		{"/maps/sample/locate?x=0&y=0&z=10", 0, "empty", "solid", true},
		{"/maps/sample/locate?x=40&y=0&z=10", 0, "empty", "empty", true},
		{"/maps/sample/locate?x=0&y=0&z=0", 0, "empty", "solid", true},
		{"/maps/sample/locate?x=0&y=0&z=-5", 1, "water", "water", true},
		{"/maps/sample/locate?x=500&y=0&z=10", 0, "empty", "empty", false},
	}
	for _, tc := range tests {
		code, v := get(t, s, tc.url)
		if code != http.StatusOK {
			t.Errorf("GET %s = %d %v", tc.url, code, v)
			continue
		}
		if v["leaf"] != tc.leaf || v["contents"] != tc.contents || v["point_contents"] != tc.point {
			t.Errorf("GET %s = leaf %v %v %v, want %v %v %v", tc.url,
				v["leaf"], v["contents"], v["point_contents"], tc.leaf, tc.contents, tc.point)
		}
		if v["inside_bounds"] != tc.inside {
			t.Errorf("GET %s: inside_bounds = %v, want %v", tc.url, v["inside_bounds"], tc.inside)
		}
	}
	for _, want := range []string{"route=/maps/{name}/locate", "map=sample", "status=200"} {
		if !bytes.Contains(logs.Bytes(), []byte(want)) {
			t.Errorf("query log lacks %s: %s", want, logs.String())
		}
	}
}

func TestLeafLists(t *testing.T) {
	s, _ := newTestServer(t)
	code, v := get(t, s, "/maps/sample/leafs/1/faces")
	if code != http.StatusOK {
		t.Fatalf("faces = %d %v", code, v)
	}
	if f := v["faces"].([]any); len(f) != 1 || f[0] != float64(1) {
		t.Errorf("leaf 1 faces = %v, want [1]", f)
	}
	code, v = get(t, s, "/maps/sample/leafs/1/brushes")
	if code != http.StatusOK {
		t.Fatalf("brushes = %d %v", code, v)
	}
	if b := v["brushes"].([]any); len(b) != 0 {
		t.Errorf("leaf 1 brushes = %v, want []", b)
	}
	code, v = get(t, s, "/maps/sample/leafs/0")
	if code != http.StatusOK || v["cluster"] != float64(0) {
		t.Errorf("leaf 0 = %d %v", code, v)
	}
}

func TestVisible(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		url  string
		want []any
	}{
		{"/maps/sample/clusters/0/visible", []any{float64(0), float64(1)}},
		{"/maps/sample/clusters/1/visible", []any{float64(1)}},
		{"/maps/sample/clusters/1/audible", []any{float64(0), float64(1)}},
	}
	for _, tc := range tests {
		code, v := get(t, s, tc.url)
		if code != http.StatusOK {
			t.Errorf("GET %s = %d %v", tc.url, code, v)
			continue
		}
		got, _ := v["clusters"].([]any)
		if len(got) != len(tc.want) {
			t.Errorf("GET %s = %v, want %v", tc.url, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("GET %s = %v, want %v", tc.url, got, tc.want)
				break
			}
		}
	}
}

func TestErrors(t *testing.T) {
	s, logs := newTestServer(t)
	tests := []struct {
		url  string
		code int
	}{
		{"/maps/missing", http.StatusNotFound},
		{"/maps/junk", http.StatusUnprocessableEntity},
		{"/maps/broken", http.StatusUnprocessableEntity},
		{"/maps/..", http.StatusBadRequest},
		{"/maps/sample/locate?x=1&y=2", http.StatusBadRequest},
		{"/maps/sample/locate?x=1&y=2&z=up", http.StatusBadRequest},
		{"/maps/sample/leafs/x/faces", http.StatusBadRequest},
		{"/maps/sample/leafs/7/faces", http.StatusNotFound},
		{"/maps/sample/leafs/-1/brushes", http.StatusNotFound},
		{"/maps/sample/clusters/2/visible", http.StatusNotFound},
	}
	for _, tc := range tests {
		code, v := get(t, s, tc.url)
		if code != tc.code {
			t.Errorf("GET %s = %d, want %d", tc.url, code, tc.code)
		}
		if _, ok := v["error"]; !ok {
			t.Errorf("GET %s has no error message: %v", tc.url, v)
		}
	}
	if !bytes.Contains(logs.Bytes(), []byte("level=WARN msg=query")) {
		t.Errorf("failed queries not logged at warn level: %s", logs.String())
	}
}
