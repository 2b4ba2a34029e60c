package fdtable_test

import (
	"testing"
	"testing/fstest"

	"github.com/stealthrocket/wasihost/internal/assert"
	"github.com/stealthrocket/wasihost/internal/fdtable"
	"github.com/stealthrocket/wasihost/internal/wasi"
)

func newPreopen(t *testing.T) (*table, wasi.FD) {
	fsys := fstest.MapFS{
		"hello.txt":     {Data: []byte("Hello, World!")},
		"sub/a.txt":     {Data: []byte("A")},
		"sub/b.txt":     {Data: []byte("B")},
		"sub/deep/c.md": {Data: []byte("C")},
	}
	fds := newTable()
	dir := fdtable.NewPreopen[wasi.UTF8](fdtable.NewDirectory(fsys, "."), fdtable.Rights{
		Base:       fdtable.DirectoryRights,
		Inheriting: fdtable.DirectoryRights | fdtable.ReadOnlyFileRights,
	}, "/data")
	assert.Equal(t, fds.Insert(3, dir), wasi.ESUCCESS)
	return fds, 3
}

func readDir(t *testing.T, fds *table, fd wasi.FD) []string {
	t.Helper()
	var names []string
	for cookie := wasi.DirCookie(0); ; {
		d, errno := fds.Lookup(fd)
		assert.Equal(t, errno, wasi.ESUCCESS)
		ent, ok, errno := d.ReadDir(cookie)
		d.Release()
		assert.Equal(t, errno, wasi.ESUCCESS)
		if !ok {
			return names
		}
		names = append(names, string(ent.Name))
		cookie = ent.Next
	}
}

func TestPrestat(t *testing.T) {
	fds, fd := newPreopen(t)
	prestat, errno := fdtable.With(fds, fd, (*descriptor).Prestat)
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal[wasi.Prestat](t, prestat, wasi.PrestatDir{NameLen: 5})

	name, errno := fdtable.With(fds, fd, (*descriptor).PrestatDirName)
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, name, "/data")
}

func TestReadDir(t *testing.T) {
	fds, fd := newPreopen(t)
	assert.EqualAll(t, readDir(t, fds, fd), []string{".", "..", "hello.txt", "sub"})

	sub, errno := fds.Open(fd, 0, "sub", wasi.OpenDirectory, fdtable.Rights{Base: wasi.FDReadDirRight}, 0)
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.EqualAll(t, readDir(t, fds, sub), []string{".", "..", "a.txt", "b.txt", "deep"})
}

func TestOpenFile(t *testing.T) {
	fds, fd := newPreopen(t)
	rights := fdtable.Rights{Base: wasi.FDReadRight | wasi.FDSeekRight | wasi.FDFileStatGetRight}

	f, errno := fds.Open(fd, 0, "sub/../hello.txt", 0, rights, 0)
	assert.Equal(t, errno, wasi.ESUCCESS)

	d, errno := fds.Lookup(f)
	assert.Equal(t, errno, wasi.ESUCCESS)
	defer d.Release()
	assert.Equal(t, d.Stat().FileType, wasi.RegularFileType)
	assert.Equal(t, d.Rights(), rights)

	buf1, buf2 := make([]byte, 5), make([]byte, 2)
	n, errno := d.Read([][]byte{buf1, buf2})
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, n, 7)
	assert.Equal(t, string(buf1)+string(buf2), "Hello, ")

	pos, errno := d.Tell()
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, pos, 7)

	n, errno = d.Pread([][]byte{buf1}, 7)
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, string(buf1[:n]), "World")

	pos, errno = d.Seek(-1, wasi.SeekEnd)
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, pos, 12)

	n, errno = d.Read([][]byte{buf1})
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, string(buf1[:n]), "!")

	n, errno = d.Read([][]byte{buf1})
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, n, 0)

	stat, errno := d.FileStat()
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, stat.Size, 13)
	assert.Equal(t, stat.FileType, wasi.RegularFileType)

	_, errno = d.Write([][]byte{buf1})
	assert.Equal(t, errno, wasi.ENOTCAPABLE)
}

func TestOpenErrors(t *testing.T) {
	fds, fd := newPreopen(t)
	read := fdtable.Rights{Base: wasi.FDReadRight}

	for _, test := range []struct {
		name   string
		path   wasi.UTF8
		oflags wasi.OFlags
		rights fdtable.Rights
		fdflag wasi.FDFlags
		errno  wasi.Errno
	}{
		{"missing file", "nope.txt", 0, read, 0, wasi.ENOENT},
		{"empty path", "", 0, read, 0, wasi.ENOENT},
		{"absolute path", "/etc/passwd", 0, read, 0, wasi.ENOTCAPABLE},
		{"escaping path", "sub/../../x", 0, read, 0, wasi.ENOTCAPABLE},
		{"not a directory", "hello.txt", wasi.OpenDirectory, read, 0, wasi.ENOTDIR},
		{"rights outside of the inheriting set", "hello.txt", 0, fdtable.Rights{Base: wasi.FDWriteRight}, 0, wasi.ENOTCAPABLE},
		{"inheriting rights outside of the inheriting set", "hello.txt", 0, fdtable.Rights{Inheriting: wasi.SockShutdownRight}, 0, wasi.ENOTCAPABLE},
		{"create on a read-only directory", "new.txt", wasi.OpenCreate, read, 0, wasi.ENOTSUP},
		{"truncate on a read-only directory", "hello.txt", wasi.OpenTruncate, read, 0, wasi.ENOTSUP},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, errno := fds.Open(fd, 0, test.path, test.oflags, test.rights, test.fdflag)
			assert.Equal(t, errno, test.errno)
		})
	}
}

func TestOpenRights(t *testing.T) {
	fds, fd := newPreopen(t)

	errno := fdtable.Use(fds, fd, func(d *descriptor) wasi.Errno {
		return d.SetRights(wasi.PathOpenRight, fdtable.ReadOnlyFileRights)
	})
	assert.Equal(t, errno, wasi.ESUCCESS)

	for _, test := range []struct {
		name    string
		oflags  wasi.OFlags
		fdflags wasi.FDFlags
	}{
		{"create requires PATH_CREATE_FILE", wasi.OpenCreate, 0},
		{"truncate requires PATH_FILESTAT_SET_SIZE", wasi.OpenTruncate, 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, errno := fds.Open(fd, 0, "hello.txt", test.oflags, fdtable.Rights{}, test.fdflags)
			assert.Equal(t, errno, wasi.ENOTCAPABLE)
		})
	}

	// The base rights hold neither FD_DATASYNC nor FD_SYNC.
	for _, flags := range []wasi.FDFlags{wasi.DSync, wasi.RSync, wasi.Sync} {
		_, errno := fds.Open(fd, 0, "hello.txt", 0, fdtable.Rights{}, flags)
		assert.Equal(t, errno, wasi.ENOTCAPABLE)
	}

	_, errno = fds.Open(fd, 0, "hello.txt", 0, fdtable.Rights{Base: wasi.FDReadRight}, 0)
	assert.Equal(t, errno, wasi.ESUCCESS)
}

func TestPathOperations(t *testing.T) {
	fds, fd := newPreopen(t)
	d, errno := fds.Lookup(fd)
	assert.Equal(t, errno, wasi.ESUCCESS)
	defer d.Release()

	stat, errno := d.PathFileStat(0, "sub/deep")
	assert.Equal(t, errno, wasi.ESUCCESS)
	assert.Equal(t, stat.FileType, wasi.DirectoryType)

	_, errno = d.PathFileStat(0, "../")
	assert.Equal(t, errno, wasi.ENOTCAPABLE)

	assert.Equal(t, d.PathCreateDirectory("new"), wasi.ENOTSUP)
	assert.Equal(t, d.PathCreateDirectory("/new"), wasi.ENOTCAPABLE)
	assert.Equal(t, d.PathUnlinkFile("hello.txt"), wasi.ENOTSUP)
	assert.Equal(t, d.PathRemoveDirectory("sub"), wasi.ENOTSUP)
	assert.Equal(t, d.PathSymlink("hello.txt", "link"), wasi.ENOTSUP)
	assert.Equal(t, d.PathFileStatSetTimes(0, "hello.txt", 0, 0, wasi.AccessTime|wasi.AccessTimeNow), wasi.EINVAL)

	_, errno = d.PathReadLink("hello.txt", make([]byte, 10))
	assert.Equal(t, errno, wasi.ENOTSUP)

	_, errno = d.Read([][]byte{make([]byte, 1)})
	assert.Equal(t, errno, wasi.ENOTCAPABLE)
}

func TestRenameAndLinkRights(t *testing.T) {
	fds, fd := newPreopen(t)
	limited := fdtable.NewDescriptor[wasi.UTF8](fdtable.NewDirectory(fstest.MapFS{}, "."), fdtable.Rights{
		Base: wasi.PathRenameSourceRight | wasi.PathLinkSourceRight,
	}, 0)
	assert.Equal(t, fds.Insert(4, limited), wasi.ESUCCESS)

	rename := func(from, to wasi.FD) wasi.Errno {
		return fdtable.UsePair(fds, from, to, func(d1, d2 *descriptor) wasi.Errno {
			return d1.PathRename("hello.txt", d2, "bye.txt")
		})
	}
	link := func(from, to wasi.FD) wasi.Errno {
		return fdtable.UsePair(fds, from, to, func(d1, d2 *descriptor) wasi.Errno {
			return d1.PathLink(0, "hello.txt", d2, "bye.txt")
		})
	}

	assert.Equal(t, rename(4, fd), wasi.ENOTSUP)
	assert.Equal(t, rename(fd, 4), wasi.ENOTCAPABLE)
	assert.Equal(t, rename(fd, 9), wasi.EBADF)
	assert.Equal(t, link(4, fd), wasi.ENOTSUP)
	assert.Equal(t, link(fd, 4), wasi.ENOTCAPABLE)
}
