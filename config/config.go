// SPDX-License-Identifier: GPL-2.0-or-later

// Package config reads the TOML configuration file.
package config

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"govbsp/conlog"
	"govbsp/vbsp"
)

type Config struct {
	Maps    MapsConfig
	Cache   CacheConfig
	Batch   BatchConfig
	Server  ServerConfig
	Logging conlog.Config
}

type MapsConfig struct {
	// search path, earlier entries win
	Paths      []string
	MinVersion int32 `toml:"min_version"`
	MaxVersion int32 `toml:"max_version"`
	Strict     bool
}

type CacheConfig struct {
	MaxEntries int `toml:"max_entries"`
}

type BatchConfig struct {
	Workers int
}

type ServerConfig struct {
	Addr string
}

func Default() *Config {
	return &Config{
		Maps: MapsConfig{
			Paths:      []string{"."},
			MinVersion: vbsp.DefaultMinVersion,
			MaxVersion: vbsp.DefaultMaxVersion,
		},
		Cache:  CacheConfig{MaxEntries: 16},
		Batch:  BatchConfig{Workers: 4},
		Server: ServerConfig{Addr: ":8093"},
	}
}

// Decode parses a TOML document over the defaults. Unknown keys are an error.
func Decode(data string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode TOML config")
	}
	if err := undecoded(md); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a TOML file over the defaults. Relative paths in it are
// relative to the directory of the file.
func Load(filename string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(filename, c)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode TOML config %s", filename)
	}
	if err := undecoded(md); err != nil {
		return nil, errors.Wrap(err, filename)
	}
	c.convertPathsToAbsolute(filepath.Dir(filename))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = k.String()
	}
	return errors.Errorf("unknown config keys: %s", strings.Join(s, ", "))
}

func (c *Config) convertPathsToAbsolute(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, p := range c.Maps.Paths {
		c.Maps.Paths[i] = abs(p)
	}
	c.Logging.Logfile = abs(c.Logging.Logfile)
}

func (c *Config) Validate() error {
	if c.Maps.MinVersion > c.Maps.MaxVersion {
		return errors.Errorf("maps: min_version %d is above max_version %d", c.Maps.MinVersion, c.Maps.MaxVersion)
	}
	if c.Cache.MaxEntries < 0 {
		return errors.Errorf("cache: max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Batch.Workers < 0 {
		return errors.Errorf("batch: workers must not be negative, got %d", c.Batch.Workers)
	}
	if c.Logging.MaxSize < 0 || c.Logging.MaxAge < 0 {
		return errors.New("logging: max_log_size and max_log_age must not be negative")
	}
	if _, err := conlog.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "logging")
	}
	if _, err := conlog.ParseFormat(c.Logging.Format); err != nil {
		return errors.Wrap(err, "logging")
	}
	return nil
}

// LoadOptions returns the decoder options of the [maps] section.
func (c *Config) LoadOptions() []vbsp.Option {
	return []vbsp.Option{
		vbsp.WithVersionRange(c.Maps.MinVersion, c.Maps.MaxVersion),
		vbsp.WithStrict(c.Maps.Strict),
	}
}
