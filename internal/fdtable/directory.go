package fdtable

import (
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

// Directory is a read-only view of a directory of a fs.FS.
type Directory struct {
	fsys fs.FS
	path string

	mutex   sync.Mutex
	entries []fs.DirEntry
}

// NewDirectory returns the directory at dir within fsys ("." for the root).
func NewDirectory(fsys fs.FS, dir string) *Directory {
	return &Directory{fsys: fsys, path: dir}
}

func (*Directory) FileType() wasi.FileType { return wasi.DirectoryType }

func (*Directory) Close() error { return nil }

func (*Directory) resource() {}

// resolve returns the name of p within the file system. Paths which are
// absolute or which escape the directory are rejected.
func (d *Directory) resolve(p string) (string, wasi.Errno) {
	if p == "" {
		return "", wasi.ENOENT
	}
	if strings.HasPrefix(p, "/") {
		return "", wasi.ENOTCAPABLE
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", wasi.ENOTCAPABLE
	}
	name := path.Join(d.path, clean)
	if !fs.ValidPath(name) {
		return "", wasi.ENOTCAPABLE
	}
	return name, wasi.ESUCCESS
}

func (d *Directory) stat() (wasi.FileStat, wasi.Errno) {
	info, err := fs.Stat(d.fsys, d.path)
	if err != nil {
		return wasi.FileStat{}, makeErrno(err)
	}
	return makeFileStat(info), wasi.ESUCCESS
}

func (d *Directory) statPath(p string) (wasi.FileStat, wasi.Errno) {
	name, errno := d.resolve(p)
	if errno != wasi.ESUCCESS {
		return wasi.FileStat{}, errno
	}
	info, err := fs.Stat(d.fsys, name)
	if err != nil {
		return wasi.FileStat{}, makeErrno(err)
	}
	return makeFileStat(info), wasi.ESUCCESS
}

func (d *Directory) open(p string, oflags wasi.OFlags) (Resource, wasi.Errno) {
	name, errno := d.resolve(p)
	if errno != wasi.ESUCCESS {
		return nil, errno
	}
	if oflags.Has(wasi.OpenCreate) || oflags.Has(wasi.OpenTruncate) {
		return nil, wasi.ENOTSUP
	}
	f, err := d.fsys.Open(name)
	if err != nil {
		return nil, makeErrno(err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, makeErrno(err)
	}
	if info.IsDir() {
		f.Close()
		return NewDirectory(d.fsys, name), wasi.ESUCCESS
	}
	if oflags.Has(wasi.OpenDirectory) {
		f.Close()
		return nil, wasi.ENOTDIR
	}
	return NewFile(f), wasi.ESUCCESS
}

func (d *Directory) readLink(p string) (string, wasi.Errno) {
	name, errno := d.resolve(p)
	if errno != wasi.ESUCCESS {
		return "", errno
	}
	fsys, ok := d.fsys.(interface {
		ReadLink(name string) (string, error)
	})
	if !ok {
		return "", wasi.ENOTSUP
	}
	target, err := fsys.ReadLink(name)
	if err != nil {
		return "", makeErrno(err)
	}
	return target, wasi.ESUCCESS
}

type dirEntry struct {
	name  string
	inode wasi.Inode
	typ   wasi.FileType
}

// entry returns the entry at position cookie. Positions 0 and 1 are the "."
// and ".." entries, followed by the directory entries sorted by name. The
// listing is read again when the enumeration restarts at cookie 0.
func (d *Directory) entry(cookie wasi.DirCookie) (dirEntry, bool, wasi.Errno) {
	switch cookie {
	case 0:
		d.mutex.Lock()
		d.entries = nil
		d.mutex.Unlock()
		return dirEntry{name: ".", typ: wasi.DirectoryType}, true, wasi.ESUCCESS
	case 1:
		return dirEntry{name: "..", typ: wasi.DirectoryType}, true, wasi.ESUCCESS
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.entries == nil {
		entries, err := fs.ReadDir(d.fsys, d.path)
		if err != nil {
			return dirEntry{}, false, makeErrno(err)
		}
		if entries == nil {
			entries = []fs.DirEntry{}
		}
		d.entries = entries
	}

	i := cookie - 2
	if i >= wasi.DirCookie(len(d.entries)) {
		return dirEntry{}, false, wasi.ESUCCESS
	}
	e := d.entries[i]
	ent := dirEntry{name: e.Name(), typ: fileTypeOf(e.Type())}
	if info, err := e.Info(); err == nil {
		var stat wasi.FileStat
		fillSysStat(&stat, info.Sys())
		ent.inode = stat.Inode
	}
	return ent, true, wasi.ESUCCESS
}
