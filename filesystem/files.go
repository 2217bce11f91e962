// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/tools/godoc/vfs"

	"govbsp/pack"
)

var (
	dirs  []string
	packs []*pack.Pack
	ns    = vfs.NameSpace{}
	mutex sync.RWMutex
)

type File interface {
	io.ReadSeekCloser
	io.ReaderAt
}

type packFileSystem struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (f *fileInfo) Name() string {
	return f.name
}
func (f *fileInfo) Size() int64 {
	return f.size
}
func (f *fileInfo) Mode() fs.FileMode {
	if f.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
func (f *fileInfo) ModTime() time.Time {
	return time.Time{}
}
func (f *fileInfo) IsDir() bool {
	return f.dir
}
func (f *fileInfo) Sys() any {
	return nil
}

func (p packFileSystem) Open(name string) (vfs.ReadSeekCloser, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	f, err := p.p.Open(strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packFileSystem) Stat(name string) (os.FileInfo, error) {
	name = strings.Trim(name, "/")
	if size, ok := p.p.Size(name); ok {
		return &fileInfo{name: path.Base(name), size: size}, nil
	}
	if name == "" || len(p.children(name)) > 0 {
		return &fileInfo{name: path.Base(name), dir: true}, nil
	}
	return nil, errors.Wrapf(os.ErrNotExist, "%s: %s", p.p, name)
}

func (p packFileSystem) Lstat(name string) (os.FileInfo, error) {
	return p.Stat(name)
}

// children returns the direct entries below dir.
func (p packFileSystem) children(dir string) map[string]*fileInfo {
	dir = strings.ToLower(strings.Trim(dir, "/"))
	prefix := dir + "/"
	if dir == "" {
		prefix = ""
	}
	c := make(map[string]*fileInfo)
	for _, n := range p.p.Files() {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		rest := n[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			c[rest[:i]] = &fileInfo{name: rest[:i], dir: true}
			continue
		}
		size, _ := p.p.Size(n)
		c[rest] = &fileInfo{name: rest, size: size}
	}
	return c
}

func (p packFileSystem) ReadDir(dir string) ([]os.FileInfo, error) {
	c := p.children(dir)
	if len(c) == 0 {
		return nil, errors.Wrapf(os.ErrNotExist, "%s: %s", p.p, dir)
	}
	infos := make([]os.FileInfo, 0, len(c))
	for _, fi := range c {
		infos = append(infos, fi)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

func (p packFileSystem) RootType(string) vfs.RootType {
	return ""
}

func (p packFileSystem) String() string {
	return p.p.String()
}

// Dirs returns the current search path.
func Dirs() []string {
	mutex.RLock()
	defer mutex.RUnlock()
	return append([]string(nil), dirs...)
}

// UseDirs replaces the search path. Earlier dirs take precedence over later
// ones and the zip bundles of a dir take precedence over its loose files.
func UseDirs(d ...string) error {
	mutex.Lock()
	defer mutex.Unlock()
	closePacks()
	dirs = append([]string(nil), d...)
	ns = vfs.NameSpace{}
	for i := len(dirs) - 1; i >= 0; i-- {
		ns.Bind("/", vfs.OS(dirs[i]), "/", vfs.BindBefore)
		if err := useDir(&ns, dirs[i]); err != nil {
			closePacks()
			ns = vfs.NameSpace{}
			return err
		}
	}
	return nil
}

func closePacks() {
	for _, p := range packs {
		p.Close()
	}
	packs = nil
}

func useDir(ns *vfs.NameSpace, dir string) error {
	// bundles sorted by name, later names bound in front
	names, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, n := range names {
		p, err := pack.NewPackReader(n)
		if err != nil {
			return err
		}
		packs = append(packs, p)
		ns.Bind("/", packFileSystem{p}, "/", vfs.BindBefore)
	}
	return nil
}

func Stat(name string) (os.FileInfo, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	return ns.Stat(path.Join("/", filepath.ToSlash(name)))
}

func Open(name string) (File, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	nf, err := ns.Open(path.Join("/", filepath.ToSlash(name)))
	if err != nil {
		return nil, err
	}
	f, ok := nf.(File)
	if !ok {
		nf.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func ReadFile(name string) ([]byte, error) {
	file, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// List returns the files of dir with the given extension, merged over the
// whole search path.
func List(dir, ext string) ([]string, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	infos, err := ns.ReadDir(path.Join("/", filepath.ToSlash(dir)))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, fi := range infos {
		if !fi.IsDir() && strings.EqualFold(Ext(fi.Name()), ext) {
			names = append(names, path.Join(dir, fi.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
