// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"govbsp/math/vec"
)

// Map is a fully decoded and validated level. It is immutable after Load and
// safe for concurrent queries.
type Map struct {
	ID       uuid.UUID
	Version  int32
	Revision int32

	Planes          []Plane
	Vertexes        []vec.Vec3
	Edges           []Edge
	SurfEdges       []int32
	TexInfos        []TexInfo
	TexData         []TexData
	Faces           []Face
	Surfaces        []Surface
	Brushes         []Brush
	BrushSides      []BrushSide
	Models          []Model
	Areas           []Area
	AreaPortals     []AreaPortal
	DispInfos       []DispInfo
	DispVerts       []DispVert
	Lighting        []ColorRGBExp32
	AmbientIndex    []LeafAmbientIndex
	AmbientLighting []LeafAmbientLighting

	Tree      *Tree
	Collision *Collision
	Vis       *Visibility

	name           string
	dir            *Directory
	texStringTable []int32
	texStringData  []byte
	gameLumps      []GameLump
}

type lumpClass int

const (
	// load fails if the lump is empty or broken
	mandatory lumpClass = iota
	// may be empty, load fails if it is broken
	referenced
	// dropped with a warning if broken, unless strict
	auxiliary
)

type loader struct {
	name string
	dir  *Directory
	o    *options
}

func (l *loader) wrap(err error, m LumpMeaning) error {
	var te *TruncatedLumpError
	if errors.As(err, &te) {
		if id, ok := l.dir.ID(m); ok {
			e, _ := l.dir.Entry(id)
			te.Offset = int64(e.Offset)
		}
	}
	return errors.Wrapf(err, "%s: lump %v", l.name, m)
}

// raw returns the bytes of m. Missing lumps are nil unless mandatory.
func (l *loader) raw(m LumpMeaning, class lumpClass) ([]byte, error) {
	data, err := l.dir.LumpFor(m)
	if err != nil {
		var nf *LumpNotFoundError
		if class != mandatory && errors.As(err, &nf) {
			return nil, nil
		}
		return nil, l.wrap(err, m)
	}
	return data, nil
}

// drop decides whether a decode error of m ends the load.
func (l *loader) drop(err error, m LumpMeaning, class lumpClass) error {
	if class == auxiliary && !l.o.strict {
		l.o.logger.Warn("dropping lump", slog.String("map", l.name), slog.String("lump", m.String()), slog.Any("error", err))
		return nil
	}
	return l.wrap(err, m)
}

func decodeLump[T any](l *loader, m LumpMeaning, class lumpClass, decode func([]byte) ([]T, error)) ([]T, error) {
	data, err := l.raw(m, class)
	if err != nil || data == nil {
		return nil, err
	}
	recs, err := decode(data)
	if err != nil {
		return nil, l.drop(err, m, class)
	}
	return recs, nil
}

// decodeEither decodes the first of ms that is present.
func decodeEither[T any](l *loader, class lumpClass, decode func([]byte) ([]T, error), ms ...LumpMeaning) ([]T, error) {
	for _, m := range ms {
		recs, err := decodeLump(l, m, class, decode)
		if err != nil || recs != nil {
			return recs, err
		}
	}
	return nil, nil
}

// Load decodes buf into a Map. Loading is all or nothing: the first
// validation error of a mandatory or referenced lump is returned.
func Load(name string, buf []byte, opts ...Option) (*Map, error) {
	o := newOptions(opts)
	dir, err := Open(buf, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "load id")
	}
	l := &loader{name: name, dir: dir, o: o}
	m := &Map{
		ID:       id,
		name:     name,
		Version:  dir.Version(),
		Revision: dir.Header().Revision,
		dir:      dir,
	}
	if err := m.decodePrimitives(l); err != nil {
		return nil, err
	}
	if err := m.decodeAuxiliary(l); err != nil {
		return nil, err
	}
	if err := m.assemble(l); err != nil {
		return nil, err
	}
	o.logger.Debug("loaded map",
		slog.String("map", name),
		slog.String("id", id.String()),
		slog.Int("version", int(m.Version)),
		slog.Int("nodes", m.Tree.NumNodes()),
		slog.Int("leafs", m.Tree.NumLeafs()),
		slog.Int("faces", len(m.Faces)),
		slog.Int("brushes", len(m.Brushes)),
		slog.Int("clusters", m.Vis.NumClusters()))
	return m, nil
}

func (m *Map) decodePrimitives(l *loader) error {
	var err error
	if m.Planes, err = decodeLump(l, LumpPlanes, mandatory, DecodePlanes); err != nil {
		return err
	}
	if m.Vertexes, err = decodeLump(l, LumpVertexes, referenced, DecodeVertexes); err != nil {
		return err
	}
	if m.Edges, err = decodeLump(l, LumpEdges, referenced, DecodeEdges); err != nil {
		return err
	}
	if m.SurfEdges, err = decodeLump(l, LumpSurfEdges, referenced, DecodeSurfEdges); err != nil {
		return err
	}
	if m.TexInfos, err = decodeLump(l, LumpTexInfo, referenced, DecodeTexInfos); err != nil {
		return err
	}
	if m.Faces, err = decodeLump(l, LumpFaces, referenced, DecodeFaces); err != nil {
		return err
	}
	if m.Brushes, err = decodeLump(l, LumpBrushes, referenced, DecodeBrushes); err != nil {
		return err
	}
	if m.BrushSides, err = decodeLump(l, LumpBrushSides, referenced, DecodeBrushSides); err != nil {
		return err
	}
	if m.Models, err = decodeLump(l, LumpModels, referenced, DecodeModels); err != nil {
		return err
	}
	if m.DispInfos, err = decodeLump(l, LumpDispInfo, referenced, DecodeDispInfos); err != nil {
		return err
	}
	return nil
}

func (m *Map) decodeAuxiliary(l *loader) error {
	var err error
	if m.TexData, err = decodeLump(l, LumpTexData, auxiliary, DecodeTexData); err != nil {
		return err
	}
	if m.texStringTable, err = decodeLump(l, LumpTexDataStringTable, auxiliary, DecodeTexDataStringTable); err != nil {
		return err
	}
	if m.texStringData, err = l.raw(LumpTexDataStringData, auxiliary); err != nil {
		return err
	}
	if m.Areas, err = decodeLump(l, LumpAreas, auxiliary, DecodeAreas); err != nil {
		return err
	}
	if m.AreaPortals, err = decodeLump(l, LumpAreaPortals, auxiliary, DecodeAreaPortals); err != nil {
		return err
	}
	if m.DispVerts, err = decodeLump(l, LumpDispVerts, auxiliary, DecodeDispVerts); err != nil {
		return err
	}
	if m.Lighting, err = decodeEither(l, auxiliary, DecodeLighting, LumpLighting, LumpLightingHDR); err != nil {
		return err
	}
	if m.AmbientIndex, err = decodeEither(l, auxiliary, DecodeLeafAmbientIndices, LumpLeafAmbientIndex, LumpLeafAmbientIndexHDR); err != nil {
		return err
	}
	if m.AmbientLighting, err = decodeEither(l, auxiliary, DecodeLeafAmbientLighting, LumpLeafAmbientLighting, LumpLeafAmbientLightingHDR); err != nil {
		return err
	}
	if m.gameLumps, err = decodeLump(l, LumpGameLump, auxiliary, DecodeGameLumps); err != nil {
		return err
	}
	vis, err := l.raw(LumpVisibility, auxiliary)
	if err != nil {
		return err
	}
	if m.Vis, err = DecodeVisibility(vis); err != nil {
		if err = l.drop(err, LumpVisibility, auxiliary); err != nil {
			return err
		}
		m.Vis = &Visibility{}
	}
	return nil
}

func (m *Map) assemble(l *loader) error {
	var err error
	m.Surfaces, err = BuildSurfaces(m.Faces, &Geometry{
		Planes:    m.Planes,
		Vertexes:  m.Vertexes,
		Edges:     m.Edges,
		SurfEdges: m.SurfEdges,
		TexInfos:  m.TexInfos,
		DispInfos: m.DispInfos,
	})
	if err != nil {
		return l.wrap(err, LumpFaces)
	}
	m.Collision, err = BuildCollision(m.Planes, m.Brushes, m.BrushSides, len(m.TexInfos), len(m.DispInfos))
	if err != nil {
		return l.wrap(err, LumpBrushes)
	}
	for i, md := range m.Models {
		if end := int64(md.FirstFace) + int64(md.NumFaces); md.FirstFace < 0 || md.NumFaces < 0 || end > int64(len(m.Faces)) {
			return l.wrap(&IndexRangeError{What: "model", Owner: i, Field: "face", Index: end - 1, Limit: len(m.Faces)}, LumpModels)
		}
	}

	nodes, err := decodeLump(l, LumpNodes, mandatory, DecodeNodes)
	if err != nil {
		return err
	}
	leafEntry, _ := l.dir.Entry(LumpID(LumpLeafs))
	leafs, err := decodeLump(l, LumpLeafs, mandatory, func(b []byte) ([]LeafRecord, error) {
		return DecodeLeafs(leafEntry.Version, b)
	})
	if err != nil {
		return err
	}
	leafFaces, err := decodeLump(l, LumpLeafFaces, referenced, DecodeLeafFaces)
	if err != nil {
		return err
	}
	leafBrushes, err := decodeLump(l, LumpLeafBrushes, referenced, DecodeLeafBrushes)
	if err != nil {
		return err
	}
	in := &TreeInput{
		Planes:      m.Planes,
		Nodes:       nodes,
		Leafs:       leafs,
		LeafFaces:   leafFaces,
		LeafBrushes: leafBrushes,
		NumFaces:    len(m.Faces),
		NumBrushes:  len(m.Brushes),
		NumClusters: -1,
	}
	if m.Vis.NumClusters() > 0 {
		in.NumClusters = m.Vis.NumClusters()
	}
	if len(m.Models) > 0 {
		in.Root = int(m.Models[0].HeadNode)
	}
	for i, md := range m.Models {
		if md.HeadNode < 0 || int(md.HeadNode) >= len(nodes) {
			return l.wrap(&IndexRangeError{What: "model", Owner: i, Field: "node", Index: int64(md.HeadNode), Limit: len(nodes)}, LumpModels)
		}
	}
	if m.Tree, err = BuildTree(in); err != nil {
		return l.wrap(err, LumpNodes)
	}
	return nil
}

func (m *Map) Name() string {
	return m.name
}

// Mins returns the lower bound of the world model, the origin if there is none.
func (m *Map) Mins() vec.Vec3 {
	if len(m.Models) == 0 {
		return vec.Vec3{}
	}
	return m.Models[0].Mins
}

func (m *Map) Maxs() vec.Vec3 {
	if len(m.Models) == 0 {
		return vec.Vec3{}
	}
	return m.Models[0].Maxs
}

// Directory returns the lump directory the map was decoded from.
func (m *Map) Directory() *Directory {
	return m.dir
}

// EntityText returns the raw entity lump without its trailing NUL.
func (m *Map) EntityText() string {
	b, err := m.dir.LumpFor(LumpEntities)
	if err != nil {
		return ""
	}
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

// Pakfile returns the embedded archive, nil if there is none.
func (m *Map) Pakfile() []byte {
	b, err := m.dir.LumpFor(LumpPakfile)
	if err != nil {
		return nil
	}
	return b
}

func (m *Map) GameLumps() []GameLump {
	return m.gameLumps
}

func (m *Map) NumClusters() int {
	return m.Vis.NumClusters()
}

func (m *Map) Locate(p vec.Vec3) LeafRef {
	return m.Tree.Locate(p)
}

// LocateInModel locates p in the tree of brush model i.
func (m *Map) LocateInModel(i int, p vec.Vec3) (LeafRef, error) {
	if i < 0 || i >= len(m.Models) {
		return 0, &IndexRangeError{What: "query", Owner: -1, Field: "model", Index: int64(i), Limit: len(m.Models)}
	}
	return m.Tree.LocateFrom(int(m.Models[i].HeadNode), p)
}

func (m *Map) FacesOf(ref LeafRef) ([]FaceRef, error) {
	return m.Tree.FacesOf(ref)
}

func (m *Map) BrushesOf(ref LeafRef) ([]BrushRef, error) {
	return m.Tree.BrushesOf(ref)
}

func (m *Map) ClustersVisibleFrom(c ClusterID) (ClusterSet, error) {
	return m.Vis.ClustersVisibleFrom(c)
}

func (m *Map) ClustersAudibleFrom(c ClusterID) (ClusterSet, error) {
	return m.Vis.ClustersAudibleFrom(c)
}

// LeafPVS returns the clusters visible from the cluster of a leaf.
func (m *Map) LeafPVS(ref LeafRef) (ClusterSet, error) {
	leaf, err := m.Tree.Leaf(ref)
	if err != nil {
		return ClusterSet{}, err
	}
	return m.Vis.ClustersVisibleFrom(leaf.Cluster)
}

// FatPVS merges the visible sets of all leafs within radius of org.
// Leafs outside any cluster are skipped.
func (m *Map) FatPVS(org vec.Vec3, radius float32) (ClusterSet, error) {
	n := m.Vis.NumClusters()
	if n == 0 {
		return ClusterSet{}, &LumpNotFoundError{Lump: LumpVisibility, ID: LumpID(LumpVisibility)}
	}
	r := vec.Vec3{radius, radius, radius}
	fat := NewClusterSet(n)
	for _, ref := range m.Tree.LeafsInBox(vec.Sub(org, r), vec.Add(org, r)) {
		leaf := m.Tree.leafs[ref]
		if leaf.Cluster < 0 {
			continue
		}
		pvs, err := m.Vis.ClustersVisibleFrom(leaf.Cluster)
		if err != nil {
			return ClusterSet{}, err
		}
		for i, b := range pvs.bits {
			fat.bits[i] |= b
		}
	}
	return fat, nil
}

func (m *Map) BrushContains(b BrushRef, p vec.Vec3) bool {
	return m.Collision.Contains(b, p)
}

// PointContents returns the contents of the brushes of the leaf at p that
// contain p, or the leaf contents when none does.
func (m *Map) PointContents(p vec.Vec3) Contents {
	ref := m.Tree.Locate(p)
	leaf := m.Tree.leafs[ref]
	var c Contents
	for _, b := range m.Tree.leafBrushes[leaf.FirstLeafBrush : leaf.FirstLeafBrush+leaf.NumLeafBrushes] {
		if m.Collision.Contains(b, p) {
			c |= m.Collision.brushes[b].Contents
		}
	}
	if c == 0 {
		return leaf.Contents
	}
	return c
}
