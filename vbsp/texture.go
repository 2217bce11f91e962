// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"bytes"
)

// MaterialName returns the material path of a texinfo, resolved through its
// texdata and the texdata string table.
func (m *Map) MaterialName(texInfo int) (string, error) {
	if texInfo < 0 || texInfo >= len(m.TexInfos) {
		return "", &IndexRangeError{What: "query", Owner: -1, Field: "texinfo", Index: int64(texInfo), Limit: len(m.TexInfos)}
	}
	td := int(m.TexInfos[texInfo].TexData)
	if len(m.TexData) == 0 {
		return "", &LumpNotFoundError{Lump: LumpTexData, ID: LumpID(LumpTexData)}
	}
	if td < 0 || td >= len(m.TexData) {
		return "", &IndexRangeError{What: "texinfo", Owner: texInfo, Field: "texdata", Index: int64(td), Limit: len(m.TexData)}
	}
	return m.stringTableEntry(td, int(m.TexData[td].NameStringTableID))
}

func (m *Map) stringTableEntry(texData, id int) (string, error) {
	if id < 0 || id >= len(m.texStringTable) {
		return "", &IndexRangeError{What: "texdata", Owner: texData, Field: "stringtable", Index: int64(id), Limit: len(m.texStringTable)}
	}
	ofs := int(m.texStringTable[id])
	if ofs < 0 || ofs >= len(m.texStringData) {
		return "", &IndexRangeError{What: "stringtable", Owner: id, Field: "stringdata", Index: int64(ofs), Limit: len(m.texStringData)}
	}
	s := m.texStringData[ofs:]
	if n := bytes.IndexByte(s, 0); n >= 0 {
		s = s[:n]
	}
	return string(s), nil
}

// Materials returns the distinct material names in texdata order.
func (m *Map) Materials() []string {
	var names []string
	seen := make(map[string]bool)
	for i, td := range m.TexData {
		n, err := m.stringTableEntry(i, int(td.NameStringTableID))
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}
