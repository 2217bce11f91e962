// SPDX-License-Identifier: GPL-2.0-or-later

package vbsp

import (
	"log/slog"
)

const (
	DefaultMinVersion = 19
	DefaultMaxVersion = 21
)

type options struct {
	minVersion int32
	maxVersion int32
	strict     bool
	logger     *slog.Logger
}

// Option configures Open and Load.
type Option func(*options)

// WithVersionRange sets the accepted format versions (inclusive).
func WithVersionRange(min, max int32) Option {
	return func(o *options) {
		o.minVersion = min
		o.maxVersion = max
	}
}

// WithStrict makes decode errors of auxiliary lumps fatal instead of dropping the lump.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		minVersion: DefaultMinVersion,
		maxVersion: DefaultMaxVersion,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
