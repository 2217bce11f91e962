// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Ident is "VBSP" read as a little-endian uint32.
const Ident = 'V' | 'B'<<8 | 'S'<<16 | 'P'<<24

// LumpEntry is one slot of the lump directory (lump_t).
type LumpEntry struct {
	Offset  uint32
	Length  uint32
	Version int32
	FourCC  [4]byte
}

// End returns the first byte after the lump, computed without overflow.
func (e LumpEntry) End() uint64 {
	return uint64(e.Offset) + uint64(e.Length)
}

// Header is the fixed file header (dheader_t).
type Header struct {
	Ident    uint32
	Version  int32
	Lumps    [HeaderLumps]LumpEntry
	Revision int32
}

// HeaderSize is the encoded size of Header.
var HeaderSize = binary.Size(Header{})

// Directory gives access to the raw lumps of one file. It keeps the buffer it
// was opened with and never copies or modifies it.
type Directory struct {
	header   Header
	data     []byte
	meanings [HeaderLumps]LumpMeaning
	ids      map[LumpMeaning]LumpID
}

// Open validates the header and the lump directory of buf.
func Open(buf []byte, opts ...Option) (*Directory, error) {
	o := newOptions(opts)
	if len(buf) < HeaderSize {
		return nil, &FormatError{Reason: fmt.Sprintf("file has %d bytes, header needs %d", len(buf), HeaderSize)}
	}
	var h Header
	if err := binary.Read(bytes.NewReader(buf[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Ident != Ident {
		return nil, &FormatError{Ident: h.Ident, Version: h.Version, Reason: "bad magic"}
	}
	if h.Version < o.minVersion || h.Version > o.maxVersion {
		return nil, &FormatError{Ident: h.Ident, Version: h.Version,
			Reason: fmt.Sprintf("version not in supported range [%d,%d]", o.minVersion, o.maxVersion)}
	}
	for i, l := range h.Lumps {
		if l.End() > uint64(len(buf)) {
			return nil, &FormatError{Ident: h.Ident, Version: h.Version,
				Reason: fmt.Sprintf("lump %d [%d,%d) exceeds file size %d", i, l.Offset, l.End(), len(buf))}
		}
	}
	d := &Directory{
		header: h,
		data:   buf,
		ids:    make(map[LumpMeaning]LumpID, HeaderLumps),
	}
	for i := range d.meanings {
		m := Meaning(h.Version, LumpID(i))
		d.meanings[i] = m
		if m != LumpUnused {
			d.ids[m] = LumpID(i)
		}
	}
	return d, nil
}

func (d *Directory) Header() Header {
	return d.header
}

func (d *Directory) Version() int32 {
	return d.header.Version
}

// Size returns the length of the underlying buffer.
func (d *Directory) Size() int {
	return len(d.data)
}

// Meaning returns what slot id holds in this file.
func (d *Directory) Meaning(id LumpID) LumpMeaning {
	if id < 0 || id >= HeaderLumps {
		return LumpUnused
	}
	return d.meanings[id]
}

// ID returns the slot holding m, false if this version has no such lump.
func (d *Directory) ID(m LumpMeaning) (LumpID, bool) {
	id, ok := d.ids[m]
	return id, ok
}

func (d *Directory) Entry(id LumpID) (LumpEntry, error) {
	if id < 0 || id >= HeaderLumps {
		return LumpEntry{}, &IndexRangeError{What: "directory", Field: "lump", Index: int64(id), Limit: HeaderLumps}
	}
	return d.header.Lumps[id], nil
}

// Lump returns the bytes of slot id. Empty lumps yield a LumpNotFoundError.
func (d *Directory) Lump(id LumpID) ([]byte, error) {
	e, err := d.Entry(id)
	if err != nil {
		return nil, err
	}
	if e.Length == 0 {
		return nil, &LumpNotFoundError{Lump: d.meanings[id], ID: id}
	}
	// capacity is clipped so appends can never reach the next lump
	return d.data[e.Offset:e.End():e.End()], nil
}

// LumpFor returns the bytes of the slot holding m in this format version.
func (d *Directory) LumpFor(m LumpMeaning) ([]byte, error) {
	id, ok := d.ids[m]
	if !ok {
		return nil, &LumpNotFoundError{Lump: m, ID: -1}
	}
	return d.Lump(id)
}
