// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"hash/crc32"
)

// Checksum is the CRC-32 of every lump except the entities, in slot order.
// Editing entities does not change it.
func (d *Directory) Checksum() uint32 {
	var crc uint32
	for id := LumpID(0); id < HeaderLumps; id++ {
		if d.meanings[id] == LumpEntities {
			continue
		}
		b, err := d.Lump(id)
		if err != nil {
			continue
		}
		crc = crc32.Update(crc, crc32.IEEETable, b)
	}
	return crc
}

func (m *Map) Checksum() uint32 {
	return m.dir.Checksum()
}
