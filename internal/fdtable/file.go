package fdtable

import (
	"io"
	"io/fs"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

// File is a resource backed by an open fs.File.
//
// Operations beyond reading and stat are available when the file implements
// the matching interface: io.ReaderAt, io.Seeker, io.Writer, io.WriterAt,
// and the Sync and Truncate methods of *os.File.
type File struct {
	file fs.File
}

func NewFile(f fs.File) *File {
	return &File{file: f}
}

func (*File) FileType() wasi.FileType { return wasi.RegularFileType }

func (f *File) Close() error { return f.file.Close() }

func (*File) resource() {}

func (f *File) read(iovs [][]byte) (wasi.Size, wasi.Errno) {
	n, err := readVec(f.file, iovs)
	return wasi.Size(n), makeErrno(err)
}

func (f *File) write(iovs [][]byte) (wasi.Size, wasi.Errno) {
	w, ok := f.file.(io.Writer)
	if !ok {
		return 0, wasi.EBADF
	}
	n, err := writeVec(w, iovs)
	return wasi.Size(n), makeErrno(err)
}

func (f *File) pread(iovs [][]byte, offset wasi.FileSize) (wasi.Size, wasi.Errno) {
	r, ok := f.file.(io.ReaderAt)
	if !ok {
		return 0, wasi.ESPIPE
	}
	n, err := readVecAt(r, iovs, int64(offset))
	return wasi.Size(n), makeErrno(err)
}

func (f *File) pwrite(iovs [][]byte, offset wasi.FileSize) (wasi.Size, wasi.Errno) {
	w, ok := f.file.(io.WriterAt)
	if !ok {
		return 0, wasi.EBADF
	}
	n, err := writeVecAt(w, iovs, int64(offset))
	return wasi.Size(n), makeErrno(err)
}

func (f *File) seek(offset wasi.FileDelta, whence wasi.Whence) (wasi.FileSize, wasi.Errno) {
	s, ok := f.file.(io.Seeker)
	if !ok {
		return 0, wasi.ESPIPE
	}
	// The values of wasi.Whence match io.SeekStart, io.SeekCurrent, and
	// io.SeekEnd.
	pos, err := s.Seek(int64(offset), int(whence))
	if err != nil {
		return 0, makeErrno(err)
	}
	if pos < 0 {
		return 0, wasi.EINVAL
	}
	return wasi.FileSize(pos), wasi.ESUCCESS
}

func (f *File) stat() (wasi.FileStat, wasi.Errno) {
	info, err := f.file.Stat()
	if err != nil {
		return wasi.FileStat{}, makeErrno(err)
	}
	return makeFileStat(info), wasi.ESUCCESS
}

func (f *File) sync() wasi.Errno {
	if s, ok := f.file.(interface{ Sync() error }); ok {
		return makeErrno(s.Sync())
	}
	return wasi.ESUCCESS
}

func (f *File) truncate(size wasi.FileSize) wasi.Errno {
	if t, ok := f.file.(interface{ Truncate(int64) error }); ok {
		return makeErrno(t.Truncate(int64(size)))
	}
	return wasi.ENOTSUP
}
