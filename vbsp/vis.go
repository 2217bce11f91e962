// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"encoding/binary"
	"math/bits"
)

const (
	visPVS = 0
	visPAS = 1
)

// Visibility holds the compressed potentially visible and potentially
// audible sets of every cluster. Rows are expanded when queried.
type Visibility struct {
	numClusters int
	data        []byte
	offsets     [2][]int
}

// DecodeVisibility checks every row of the visibility lump. Rows sharing an
// offset are checked once. An empty lump yields an empty table.
func DecodeVisibility(data []byte) (*Visibility, error) {
	v := &Visibility{}
	if len(data) == 0 {
		return v, nil
	}
	if len(data) < 4 {
		return nil, &TruncatedVisibilityError{Cluster: -1, Offset: 0, Want: 4, Got: len(data)}
	}
	n := int32(binary.LittleEndian.Uint32(data))
	if n < 0 {
		return nil, &TruncatedVisibilityError{Cluster: -1, Offset: 0, Want: 4, Got: len(data)}
	}
	if want := 4 + 8*int64(n); want > int64(len(data)) {
		return nil, &TruncatedVisibilityError{Cluster: -1, Offset: 4, Want: int(want), Got: len(data)}
	}
	v.numClusters = int(n)
	rowLen := v.rowLen()
	for kind := range v.offsets {
		v.offsets[kind] = make([]int, v.numClusters)
	}
	checked := make(map[int]bool)
	for c := 0; c < v.numClusters; c++ {
		for kind := range v.offsets {
			ofs := int(int32(binary.LittleEndian.Uint32(data[4+8*c+4*kind:])))
			if !checked[ofs] {
				if err := expandRow(data, ofs, rowLen, nil); err != nil {
					err.Cluster = c
					return nil, err
				}
				checked[ofs] = true
			}
			v.offsets[kind][c] = ofs
		}
	}
	v.data = append([]byte(nil), data...)
	return v, nil
}

func (v *Visibility) rowLen() int {
	return (v.numClusters + 7) / 8
}

// decompressRow expands one run length encoded row starting at ofs.
func decompressRow(data []byte, ofs, rowLen int) ([]byte, *TruncatedVisibilityError) {
	row := make([]byte, rowLen)
	if err := expandRow(data, ofs, rowLen, row); err != nil {
		return nil, err
	}
	return row, nil
}

// expandRow walks the row at ofs, writing it to row unless row is nil.
// A non zero byte is copied, a zero byte is followed by the number of zero
// bytes it stands for.
func expandRow(data []byte, ofs, rowLen int, row []byte) *TruncatedVisibilityError {
	if ofs < 0 || (ofs >= len(data) && rowLen > 0) {
		return &TruncatedVisibilityError{Offset: ofs, Want: rowLen}
	}
	j := 0
	i := ofs
	for j < rowLen {
		if i >= len(data) {
			return &TruncatedVisibilityError{Offset: ofs, Want: rowLen, Got: j}
		}
		if data[i] != 0 {
			if row != nil {
				row[j] = data[i]
			}
			j++
			i++
			continue
		}
		if i+1 >= len(data) {
			return &TruncatedVisibilityError{Offset: ofs, Want: rowLen, Got: j}
		}
		// the run may overshoot the row on the last byte; the rest is already zero
		j += int(data[i+1])
		i += 2
	}
	return nil
}

// encodeRows lays out n clusters in the lump format, PVS before PAS, with
// identical compressed rows shared.
func encodeRows(n int, row func(kind, c int) []byte) []byte {
	out := make([]byte, 4+8*n)
	binary.LittleEndian.PutUint32(out, uint32(n))
	seen := make(map[string]int)
	for c := 0; c < n; c++ {
		for kind := 0; kind < 2; kind++ {
			comp := compressRow(row(kind, c))
			ofs, ok := seen[string(comp)]
			if !ok {
				ofs = len(out)
				seen[string(comp)] = ofs
				out = append(out, comp...)
			}
			binary.LittleEndian.PutUint32(out[4+8*c+4*kind:], uint32(ofs))
		}
	}
	return out
}

// EncodeVisibility compresses v back into the lump layout.
func EncodeVisibility(v *Visibility) []byte {
	if v == nil || v.numClusters == 0 {
		return nil
	}
	return encodeRows(v.numClusters, func(kind, c int) []byte {
		row, _ := decompressRow(v.data, v.offsets[kind][c], v.rowLen())
		return row
	})
}

func compressRow(row []byte) []byte {
	var out []byte
	for i := 0; i < len(row); {
		if row[i] != 0 {
			out = append(out, row[i])
			i++
			continue
		}
		run := 0
		for i < len(row) && row[i] == 0 && run < 255 {
			run++
			i++
		}
		out = append(out, 0, byte(run))
	}
	return out
}

// NewVisibility builds a table from decompressed rows. pvs and pas must have
// the same number of rows; a nil pas reuses pvs.
func NewVisibility(pvs, pas []ClusterSet) *Visibility {
	if pas == nil {
		pas = pvs
	}
	n := len(pvs)
	if n == 0 {
		return &Visibility{}
	}
	rowLen := (n + 7) / 8
	sets := [2][]ClusterSet{pvs, pas}
	data := encodeRows(n, func(kind, c int) []byte {
		row := make([]byte, rowLen)
		copy(row, sets[kind][c].bits)
		return row
	})
	v, err := DecodeVisibility(data)
	if err != nil {
		// encodeRows always produces a decodable lump
		panic(err)
	}
	return v
}

func (v *Visibility) NumClusters() int {
	return v.numClusters
}

// ClustersVisibleFrom returns the potentially visible set of c.
func (v *Visibility) ClustersVisibleFrom(c ClusterID) (ClusterSet, error) {
	return v.query(LumpVisibility, visPVS, c)
}

// ClustersAudibleFrom returns the potentially audible set of c.
func (v *Visibility) ClustersAudibleFrom(c ClusterID) (ClusterSet, error) {
	return v.query(LumpVisibility, visPAS, c)
}

func (v *Visibility) query(lump LumpMeaning, kind int, c ClusterID) (ClusterSet, error) {
	if v == nil || v.numClusters == 0 {
		return ClusterSet{}, &LumpNotFoundError{Lump: lump, ID: LumpID(lump)}
	}
	if c < 0 || int(c) >= v.numClusters {
		return ClusterSet{}, &IndexRangeError{What: "query", Owner: -1, Field: "cluster", Index: int64(c), Limit: v.numClusters}
	}
	row, err := decompressRow(v.data, v.offsets[kind][c], v.rowLen())
	if err != nil {
		err.Cluster = int(c)
		return ClusterSet{}, err
	}
	return ClusterSet{bits: row, n: v.numClusters}, nil
}

// ClusterSet is a read only bitset of cluster ids.
type ClusterSet struct {
	bits []byte
	n    int
}

// NewClusterSet returns a set over n clusters holding ids.
func NewClusterSet(n int, ids ...ClusterID) ClusterSet {
	s := ClusterSet{bits: make([]byte, (n+7)/8), n: n}
	for _, c := range ids {
		if c >= 0 && int(c) < n {
			s.bits[c>>3] |= 1 << (c & 7)
		}
	}
	return s
}

func (s ClusterSet) Has(c ClusterID) bool {
	if c < 0 || int(c) >= s.n {
		return false
	}
	return s.bits[c>>3]&(1<<(c&7)) != 0
}

// Len returns the number of clusters in the set.
func (s ClusterSet) Len() int {
	l := 0
	for i, b := range s.bits {
		if i == len(s.bits)-1 && s.n%8 != 0 {
			b &= 1<<(s.n%8) - 1
		}
		l += bits.OnesCount8(b)
	}
	return l
}

// Clusters returns the members in ascending order.
func (s ClusterSet) Clusters() []ClusterID {
	var out []ClusterID
	for c := 0; c < s.n; c++ {
		if s.bits[c>>3]&(1<<(c&7)) != 0 {
			out = append(out, ClusterID(c))
		}
	}
	return out
}

// Bytes returns a copy of the decompressed row.
func (s ClusterSet) Bytes() []byte {
	return append([]byte(nil), s.bits...)
}
