// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"govbsp/filesystem"
	"govbsp/math/vec"
	"govbsp/model"
	"govbsp/report"
	"govbsp/vbsp"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg proto.Message) {
	b, err := report.Marshal(msg)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// mapPath turns a route name into a search path file name.
func mapPath(name string) (string, bool) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	if filesystem.Ext(name) == "" {
		name += ".bsp"
	}
	return path.Join("maps", name), true
}

// loadStatus maps a load failure to a status code.
func loadStatus(err error) int {
	var format *vbsp.FormatError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnknownFormat), errors.As(err, &format):
		return http.StatusUnprocessableEntity
	}
	var (
		truncated *vbsp.TruncatedLumpError
		vis       *vbsp.TruncatedVisibilityError
		index     *vbsp.IndexRangeError
		tree      *vbsp.CorruptTreeError
		missing   *vbsp.LumpNotFoundError
		face      *vbsp.DegenerateFaceError
	)
	if errors.As(err, &truncated) || errors.As(err, &vis) || errors.As(err, &index) ||
		errors.As(err, &tree) || errors.As(err, &missing) || errors.As(err, &face) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// queryStatus maps a failed query on a loaded map to a status code.
func queryStatus(err error) int {
	var (
		index   *vbsp.IndexRangeError
		missing *vbsp.LumpNotFoundError
	)
	if errors.As(err, &index) || errors.As(err, &missing) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// loadMap resolves the {name} parameter, writing the error response itself
// when it fails.
func (s *Server) loadMap(w http.ResponseWriter, r *http.Request) (*vbsp.Map, bool) {
	name, ok := mapPath(chi.URLParam(r, "name"))
	if !ok {
		jsonError(w, "invalid map name", http.StatusBadRequest)
		return nil, false
	}
	m, err := s.cache.Get(name)
	if err != nil {
		code := loadStatus(err)
		if code != http.StatusNotFound {
			s.log.Warn("map load failed", "name", name, "error", err)
		}
		jsonError(w, err.Error(), code)
		return nil, false
	}
	bsp, ok := model.Map(m)
	if !ok {
		jsonError(w, name+" is not a map", http.StatusUnprocessableEntity)
		return nil, false
	}
	return bsp, true
}

func intParam(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		jsonError(w, "invalid "+key, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	files, err := filesystem.List("maps", ".bsp")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filesystem.StripExt(path.Base(f)))
	}
	writeJSON(w, http.StatusOK, map[string]any{"maps": names})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadMap(w, r)
	if !ok {
		return
	}
	sum, err := report.Summary(m)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, sum)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var p vec.Vec3
	q := r.URL.Query()
	for i, k := range []string{"x", "y", "z"} {
		f, err := strconv.ParseFloat(q.Get(k), 32)
		if err != nil {
			jsonError(w, "invalid or missing "+k, http.StatusBadRequest)
			return
		}
		p[i] = float32(f)
	}
	m, ok := s.loadMap(w, r)
	if !ok {
		return
	}
	ref := m.Locate(p)
	leaf, err := report.Leaf(m, ref)
	if err != nil {
		jsonError(w, err.Error(), queryStatus(err))
		return
	}
	l, _ := m.Tree.Leaf(ref)
	leaf.Fields["point_contents"] = structpb.NewStringValue(m.PointContents(p).String())
	leaf.Fields["inside_bounds"] = structpb.NewBoolValue(l.Contains(p))
	writeMessage(w, leaf)
}

func (s *Server) handleLeaf(w http.ResponseWriter, r *http.Request) {
	ref, ok := intParam(w, r, "leaf")
	if !ok {
		return
	}
	m, ok := s.loadMap(w, r)
	if !ok {
		return
	}
	leaf, err := report.Leaf(m, vbsp.LeafRef(ref))
	if err != nil {
		jsonError(w, err.Error(), queryStatus(err))
		return
	}
	writeMessage(w, leaf)
}

func (s *Server) handleLeafFaces(w http.ResponseWriter, r *http.Request) {
	ref, ok := intParam(w, r, "leaf")
	if !ok {
		return
	}
	m, ok := s.loadMap(w, r)
	if !ok {
		return
	}
	faces, err := m.FacesOf(vbsp.LeafRef(ref))
	if err != nil {
		jsonError(w, err.Error(), queryStatus(err))
		return
	}
	if faces == nil {
		faces = []vbsp.FaceRef{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaf": ref, "faces": faces})
}

func (s *Server) handleLeafBrushes(w http.ResponseWriter, r *http.Request) {
	ref, ok := intParam(w, r, "leaf")
	if !ok {
		return
	}
	m, ok := s.loadMap(w, r)
	if !ok {
		return
	}
	brushes, err := m.BrushesOf(vbsp.LeafRef(ref))
	if err != nil {
		jsonError(w, err.Error(), queryStatus(err))
		return
	}
	if brushes == nil {
		brushes = []vbsp.BrushRef{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaf": ref, "brushes": brushes})
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request, query func(*vbsp.Map, vbsp.ClusterID) (vbsp.ClusterSet, error)) {
	c, ok := intParam(w, r, "cluster")
	if !ok {
		return
	}
	m, ok := s.loadMap(w, r)
	if !ok {
		return
	}
	set, err := query(m, vbsp.ClusterID(c))
	if err != nil {
		jsonError(w, err.Error(), queryStatus(err))
		return
	}
	msg, err := report.Clusters(vbsp.ClusterID(c), set)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, msg)
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	s.handleClusters(w, r, (*vbsp.Map).ClustersVisibleFrom)
}

func (s *Server) handleAudible(w http.ResponseWriter, r *http.Request) {
	s.handleClusters(w, r, (*vbsp.Map).ClustersAudibleFrom)
}
