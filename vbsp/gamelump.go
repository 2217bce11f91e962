// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"bytes"
	"encoding/binary"
)

// DecodeGameLumps reads the game lump directory: an int32 count followed by
// that many entries.
func DecodeGameLumps(data []byte) ([]GameLump, error) {
	size := binary.Size(GameLump{})
	if len(data) < 4 {
		return nil, &TruncatedLumpError{Lump: LumpGameLump, RecordSize: 4, Length: len(data)}
	}
	n := int32(binary.LittleEndian.Uint32(data))
	if n < 0 || int64(n)*int64(size) > int64(len(data)-4) {
		return nil, &TruncatedLumpError{Lump: LumpGameLump, RecordSize: size, Length: len(data) - 4}
	}
	g := make([]GameLump, n)
	if err := binary.Read(bytes.NewReader(data[4:]), binary.LittleEndian, g); err != nil {
		return nil, err
	}
	return g, nil
}

func EncodeGameLumps(g []GameLump) []byte {
	var b bytes.Buffer
	// entries are fixed size, writing to a bytes.Buffer can not fail
	_ = binary.Write(&b, binary.LittleEndian, int32(len(g)))
	_ = binary.Write(&b, binary.LittleEndian, g)
	return b.Bytes()
}

// Name returns the four character id, stored reversed on disk ("prps" is "sprp").
func (g GameLump) Name() string {
	return string([]byte{g.ID[3], g.ID[2], g.ID[1], g.ID[0]})
}

// GameLump returns the payload of the game lump named name, for example "sprp".
func (m *Map) GameLump(name string) (GameLump, []byte, error) {
	for _, g := range m.gameLumps {
		if g.Name() != name {
			continue
		}
		end := int64(g.FileOfs) + int64(g.FileLen)
		if g.FileOfs < 0 || g.FileLen < 0 || end > int64(m.dir.Size()) {
			return GameLump{}, nil, &IndexRangeError{What: "gamelump", Owner: -1, Field: "file", Index: end, Limit: m.dir.Size()}
		}
		return g, m.dir.data[g.FileOfs:end:end], nil
	}
	return GameLump{}, nil, &LumpNotFoundError{Lump: LumpGameLump, ID: LumpID(LumpGameLump)}
}
