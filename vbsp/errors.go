// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"fmt"
)

// FormatError is returned when the file is not a loadable VBSP file at all.
type FormatError struct {
	Ident   uint32
	Version int32
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("vbsp: bad format (ident %#08x, version %d): %s", e.Ident, e.Version, e.Reason)
}

// TruncatedLumpError reports a lump whose length is not a multiple of its record size.
type TruncatedLumpError struct {
	Lump       LumpMeaning
	Offset     int64
	RecordSize int
	Length     int
}

func (e *TruncatedLumpError) Error() string {
	return fmt.Sprintf("vbsp: lump %v at offset %d: length %d is not a multiple of record size %d",
		e.Lump, e.Offset, e.Length, e.RecordSize)
}

// TruncatedVisibilityError reports a visibility lump that ends before all
// rows could be decoded.
type TruncatedVisibilityError struct {
	Cluster int // -1 for the lump header
	Offset  int
	Want    int
	Got     int
}

func (e *TruncatedVisibilityError) Error() string {
	if e.Cluster < 0 {
		return fmt.Sprintf("vbsp: visibility header truncated at byte %d: need %d bytes, have %d", e.Offset, e.Want, e.Got)
	}
	return fmt.Sprintf("vbsp: visibility row of cluster %d at byte %d: decoded %d of %d bytes",
		e.Cluster, e.Offset, e.Got, e.Want)
}

// IndexRangeError reports a cross reference that points outside its target array.
type IndexRangeError struct {
	What  string // the referencing record, e.g. "face"
	Owner int    // index of the referencing record
	Field string // the referenced array, e.g. "plane"
	Index int64
	Limit int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("vbsp: %s %d: %s index %d out of range [0,%d)", e.What, e.Owner, e.Field, e.Index, e.Limit)
}

// CorruptTreeError reports a node graph that is not a valid BSP tree.
type CorruptTreeError struct {
	Node   int
	Reason string
}

func (e *CorruptTreeError) Error() string {
	return fmt.Sprintf("vbsp: corrupt tree at node %d: %s", e.Node, e.Reason)
}

// LumpNotFoundError is returned for lumps of length zero.
type LumpNotFoundError struct {
	Lump LumpMeaning
	ID   LumpID
}

func (e *LumpNotFoundError) Error() string {
	return fmt.Sprintf("vbsp: lump %d (%v) is empty", e.ID, e.Lump)
}

// DegenerateFaceError reports a face that cannot form a polygon.
type DegenerateFaceError struct {
	Face  int
	Edges int
}

func (e *DegenerateFaceError) Error() string {
	return fmt.Sprintf("vbsp: face %d has %d edges, need at least 3", e.Face, e.Edges)
}
