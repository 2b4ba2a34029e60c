package fdtable

import (
	"github.com/stealthrocket/wasihost/internal/wasi"
)

// The operations of this file check the rights of the descriptor before
// touching the resource. Operations that a resource kind does not support
// return ENOTSUP.

func (d *Descriptor[S]) Advise(offset, length wasi.FileSize, advice wasi.Advice) wasi.Errno {
	if errno := d.check(wasi.FDAdviseRight); errno != wasi.ESUCCESS {
		return errno
	}
	switch d.resource.(type) {
	case *File:
		return wasi.ESUCCESS
	default:
		return wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) Allocate(offset, length wasi.FileSize) wasi.Errno {
	if errno := d.check(wasi.FDAllocateRight); errno != wasi.ESUCCESS {
		return errno
	}
	return wasi.ENOTSUP
}

func (d *Descriptor[S]) DataSync() wasi.Errno {
	if errno := d.check(wasi.FDDataSyncRight); errno != wasi.ESUCCESS {
		return errno
	}
	switch r := d.resource.(type) {
	case *File:
		return r.sync()
	default:
		return wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) Sync() wasi.Errno {
	if errno := d.check(wasi.FDSyncRight); errno != wasi.ESUCCESS {
		return errno
	}
	switch r := d.resource.(type) {
	case *File:
		return r.sync()
	default:
		return wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) FileStat() (wasi.FileStat, wasi.Errno) {
	if errno := d.check(wasi.FDFileStatGetRight); errno != wasi.ESUCCESS {
		return wasi.FileStat{}, errno
	}
	switch r := d.resource.(type) {
	case *File:
		return r.stat()
	case *Directory:
		return r.stat()
	case *Socket:
		return r.stat(), wasi.ESUCCESS
	default:
		return wasi.FileStat{}, wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) FileStatSetSize(size wasi.FileSize) wasi.Errno {
	if errno := d.check(wasi.FDFileStatSetSizeRight); errno != wasi.ESUCCESS {
		return errno
	}
	switch r := d.resource.(type) {
	case *File:
		return r.truncate(size)
	default:
		return wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) FileStatSetTimes(atim, mtim wasi.Timestamp, flags wasi.FSTFlags) wasi.Errno {
	if errno := d.check(wasi.FDFileStatSetTimesRight); errno != wasi.ESUCCESS {
		return errno
	}
	if errno := checkTimeFlags(flags); errno != wasi.ESUCCESS {
		return errno
	}
	return wasi.ENOTSUP
}

func checkTimeFlags(flags wasi.FSTFlags) wasi.Errno {
	if flags.Has(wasi.AccessTime|wasi.AccessTimeNow) || flags.Has(wasi.ModifyTime|wasi.ModifyTimeNow) {
		return wasi.EINVAL
	}
	return wasi.ESUCCESS
}

func (d *Descriptor[S]) Pread(iovs [][]byte, offset wasi.FileSize) (wasi.Size, wasi.Errno) {
	if errno := d.check(wasi.FDReadRight | wasi.FDSeekRight); errno != wasi.ESUCCESS {
		return 0, errno
	}
	switch r := d.resource.(type) {
	case *File:
		return r.pread(iovs, offset)
	case *Directory:
		return 0, wasi.EISDIR
	default:
		return 0, wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) Pwrite(iovs [][]byte, offset wasi.FileSize) (wasi.Size, wasi.Errno) {
	if errno := d.check(wasi.FDWriteRight | wasi.FDSeekRight); errno != wasi.ESUCCESS {
		return 0, errno
	}
	switch r := d.resource.(type) {
	case *File:
		return r.pwrite(iovs, offset)
	case *Directory:
		return 0, wasi.EISDIR
	default:
		return 0, wasi.ENOTSUP
	}
}

// Prestat describes the pre-opened directory that d refers to. It requires no
// rights. Descriptors which were not pre-opened report EBADF, the error that
// guests expect when enumerating pre-opened descriptors.
func (d *Descriptor[S]) Prestat() (wasi.Prestat, wasi.Errno) {
	if !d.preopen {
		return nil, wasi.EBADF
	}
	return wasi.PrestatDir{NameLen: uint32(len(d.name.Bytes()))}, wasi.ESUCCESS
}

// PrestatDirName returns the name of the pre-opened directory.
func (d *Descriptor[S]) PrestatDirName() (S, wasi.Errno) {
	if !d.preopen {
		var zero S
		return zero, wasi.EBADF
	}
	return d.name, wasi.ESUCCESS
}

func (d *Descriptor[S]) Read(iovs [][]byte) (wasi.Size, wasi.Errno) {
	if errno := d.check(wasi.FDReadRight); errno != wasi.ESUCCESS {
		return 0, errno
	}
	switch r := d.resource.(type) {
	case *CharacterDevice:
		n, err := r.dev.ReadVec(iovs)
		return wasi.Size(n), makeErrno(err)
	case *File:
		return r.read(iovs)
	case *Socket:
		return r.read(iovs)
	case *Directory:
		return 0, wasi.EISDIR
	default:
		return 0, wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) Write(iovs [][]byte) (wasi.Size, wasi.Errno) {
	if errno := d.check(wasi.FDWriteRight); errno != wasi.ESUCCESS {
		return 0, errno
	}
	switch r := d.resource.(type) {
	case *CharacterDevice:
		n, err := r.dev.WriteVec(iovs)
		return wasi.Size(n), makeErrno(err)
	case *File:
		return r.write(iovs)
	case *Socket:
		return r.write(iovs)
	case *Directory:
		return 0, wasi.EISDIR
	default:
		return 0, wasi.ENOTSUP
	}
}

// ReadDir returns the directory entry at position cookie. The boolean is false
// once the enumeration is exhausted.
func (d *Descriptor[S]) ReadDir(cookie wasi.DirCookie) (wasi.DirEntry[S], bool, wasi.Errno) {
	if errno := d.check(wasi.FDReadDirRight); errno != wasi.ESUCCESS {
		return wasi.DirEntry[S]{}, false, errno
	}
	dir, ok := d.resource.(*Directory)
	if !ok {
		return wasi.DirEntry[S]{}, false, wasi.ENOTSUP
	}
	ent, ok, errno := dir.entry(cookie)
	if !ok || errno != wasi.ESUCCESS {
		return wasi.DirEntry[S]{}, false, errno
	}
	name, err := wasi.StringFromNative[S]([]byte(ent.name))
	if err != nil {
		return wasi.DirEntry[S]{}, false, wasi.EILSEQ
	}
	return wasi.DirEntry[S]{
		Next:  cookie + 1,
		Inode: ent.inode,
		Type:  ent.typ,
		Name:  name,
	}, true, wasi.ESUCCESS
}

// Seek moves the file offset. A zero offset relative to the current position
// only queries the offset, which FD_TELL also permits.
func (d *Descriptor[S]) Seek(offset wasi.FileDelta, whence wasi.Whence) (wasi.FileSize, wasi.Errno) {
	var errno wasi.Errno
	if offset == 0 && whence == wasi.SeekCurrent {
		errno = d.checkEither(wasi.FDSeekRight, wasi.FDTellRight)
	} else {
		errno = d.check(wasi.FDSeekRight)
	}
	if errno != wasi.ESUCCESS {
		return 0, errno
	}
	return d.seek(offset, whence)
}

// Tell returns the file offset; FD_SEEK also permits it.
func (d *Descriptor[S]) Tell() (wasi.FileSize, wasi.Errno) {
	if errno := d.checkEither(wasi.FDTellRight, wasi.FDSeekRight); errno != wasi.ESUCCESS {
		return 0, errno
	}
	return d.seek(0, wasi.SeekCurrent)
}

func (d *Descriptor[S]) seek(offset wasi.FileDelta, whence wasi.Whence) (wasi.FileSize, wasi.Errno) {
	switch r := d.resource.(type) {
	case *File:
		return r.seek(offset, whence)
	default:
		return 0, wasi.ENOTSUP
	}
}

func (d *Descriptor[S]) SockRecv(iovs [][]byte, flags wasi.RIFlags) (wasi.Size, wasi.ROFlags, wasi.Errno) {
	if errno := d.check(wasi.FDReadRight); errno != wasi.ESUCCESS {
		return 0, 0, errno
	}
	s, ok := d.resource.(*Socket)
	if !ok {
		return 0, 0, wasi.ENOTSUP
	}
	return s.recv(iovs, flags)
}

func (d *Descriptor[S]) SockSend(iovs [][]byte, flags wasi.SIFlags) (wasi.Size, wasi.Errno) {
	if errno := d.check(wasi.FDWriteRight); errno != wasi.ESUCCESS {
		return 0, errno
	}
	s, ok := d.resource.(*Socket)
	if !ok {
		return 0, wasi.ENOTSUP
	}
	return s.write(iovs)
}

func (d *Descriptor[S]) SockShutdown(flags wasi.SDFlags) wasi.Errno {
	if errno := d.check(wasi.SockShutdownRight); errno != wasi.ESUCCESS {
		return errno
	}
	s, ok := d.resource.(*Socket)
	if !ok {
		return wasi.ENOTSUP
	}
	return s.shutdown(flags)
}

// Poll reports whether d can be subscribed to by poll_oneoff.
func (d *Descriptor[S]) Poll() wasi.Errno {
	return d.check(wasi.PollFDReadWriteRight)
}
