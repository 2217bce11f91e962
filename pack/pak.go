// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// Pack is a zip archive, either a pakfile embedded in a map or a bundle on
// disk. Lookups ignore case and accept either path separator.
type Pack struct {
	ra    io.ReaderAt
	c     io.Closer
	files map[string]*zip.File
	name  string
}

func normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}

// Open returns a reader for the named entry. Stored entries are read in
// place, compressed ones are inflated into memory.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	f, ok := p.files[normalize(name)]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "%s: %s", p.name, name)
	}
	if f.Method == zip.Store {
		ofs, err := f.DataOffset()
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", p.name, name)
		}
		return io.NewSectionReader(p.ra, ofs, int64(f.UncompressedSize64)), nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "%s: %s", p.name, name)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: %s", p.name, name)
	}
	return io.NewSectionReader(bytes.NewReader(b), 0, int64(len(b))), nil
}

func (p *Pack) ReadFile(name string) ([]byte, error) {
	r, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// Size returns the uncompressed size of an entry.
func (p *Pack) Size(name string) (int64, bool) {
	f, ok := p.files[normalize(name)]
	if !ok {
		return 0, false
	}
	return int64(f.UncompressedSize64), true
}

// Files returns the normalized names of all entries, sorted.
func (p *Pack) Files() []string {
	names := make([]string, 0, len(p.files))
	for n := range p.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	if p.c == nil {
		return nil
	}
	return p.c.Close()
}

func (p *Pack) init(size int64) error {
	r, err := zip.NewReader(p.ra, size)
	if err != nil {
		return errors.Wrapf(err, "%s: not a pack", p.name)
	}
	p.files = make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		n := normalize(f.Name)
		if p.files[n] != nil {
			return errors.Errorf("%s: files in pack are not unique: %s", p.name, n)
		}
		p.files[n] = f
	}
	return nil
}

// NewReader reads a pack held in memory, like the pakfile lump of a map.
func NewReader(name string, data []byte) (*Pack, error) {
	p := &Pack{ra: bytes.NewReader(data), name: name}
	if err := p.init(int64(len(data))); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPackReader opens a pack file on disk. It has to be closed.
func NewPackReader(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	p := &Pack{ra: f, c: f, name: name}
	if err := p.init(fi.Size()); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}
