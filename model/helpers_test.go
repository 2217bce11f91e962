// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"io"
	"log/slog"

	"govbsp/math/vec"
	"govbsp/vbsp"
)

func vbspStrictRange() []vbsp.Option {
	return []vbsp.Option{
		vbsp.WithVersionRange(20, 21),
		vbsp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

type fake struct {
	name string
}

func (f *fake) Name() string   { return f.name }
func (f *fake) Mins() vec.Vec3 { return vec.Vec3{} }
func (f *fake) Maxs() vec.Vec3 { return vec.Vec3{} }
