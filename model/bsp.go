// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"govbsp/vbsp"
)

func init() {
	RegisterBSP()
}

// RegisterBSP (re)registers the level loader with the given load options.
func RegisterBSP(opts ...vbsp.Option) {
	Register(vbsp.Ident, func(name string, data []byte) (Model, error) {
		m, err := vbsp.Load(name, data, opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}

// Map returns m as a level, false if it is some other kind of model.
func Map(m Model) (*vbsp.Map, bool) {
	bsp, ok := m.(*vbsp.Map)
	return bsp, ok
}
