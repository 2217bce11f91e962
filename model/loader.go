// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"

	"govbsp/filesystem"
)

var (
	loaders   = make(map[uint32]LoadFunc)
	loadersMu sync.RWMutex
)

// ErrUnknownFormat is returned by Decode for data no loader claims.
var ErrUnknownFormat = errors.New("unknown file format")

// Load reads name from the search path and decodes it with the loader
// registered for its magic.
func Load(name string) (Model, error) {
	data, err := filesystem.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Decode(name, data)
}

// Decode dispatches data on its first four bytes.
func Decode(name string, data []byte) (Model, error) {
	if len(data) < 4 {
		return nil, errors.Wrapf(ErrUnknownFormat, "file %s is too short to be a model", name)
	}
	magic := binary.LittleEndian.Uint32(data)

	loadersMu.RLock()
	f, ok := loaders[magic]
	loadersMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFormat, "file %s", name)
	}
	return f(name, data)
}

type LoadFunc func(name string, data []byte) (Model, error)

func Register(magic uint32, f LoadFunc) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	loaders[magic] = f
}
