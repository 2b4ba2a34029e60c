package host

import (
	"context"

	"github.com/stealthrocket/wasihost/internal/fdtable"
	"github.com/stealthrocket/wasihost/internal/wasi"
)

func (s *System[S]) FDAdvise(ctx context.Context, fd wasi.FD, offset, length wasi.FileSize, advice wasi.Advice) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.Advise(offset, length, advice)
	})
}

func (s *System[S]) FDAllocate(ctx context.Context, fd wasi.FD, offset, length wasi.FileSize) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.Allocate(offset, length)
	})
}

func (s *System[S]) FDClose(ctx context.Context, fd wasi.FD) wasi.Errno {
	return s.fds.Close(fd)
}

func (s *System[S]) FDDataSync(ctx context.Context, fd wasi.FD) wasi.Errno {
	return fdtable.Use(s.fds, fd, (*fdtable.Descriptor[S]).DataSync)
}

func (s *System[S]) FDStatGet(ctx context.Context, fd wasi.FD) (wasi.FDStat, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.FDStat, wasi.Errno) {
		return d.Stat(), wasi.ESUCCESS
	})
}

func (s *System[S]) FDStatSetFlags(ctx context.Context, fd wasi.FD, flags wasi.FDFlags) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.SetFlags(flags)
	})
}

func (s *System[S]) FDStatSetRights(ctx context.Context, fd wasi.FD, base, inheriting wasi.Rights) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.SetRights(base, inheriting)
	})
}

func (s *System[S]) FDFileStatGet(ctx context.Context, fd wasi.FD) (wasi.FileStat, wasi.Errno) {
	return fdtable.With(s.fds, fd, (*fdtable.Descriptor[S]).FileStat)
}

func (s *System[S]) FDFileStatSetSize(ctx context.Context, fd wasi.FD, size wasi.FileSize) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.FileStatSetSize(size)
	})
}

func (s *System[S]) FDFileStatSetTimes(ctx context.Context, fd wasi.FD, atim, mtim wasi.Timestamp, flags wasi.FSTFlags) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.FileStatSetTimes(atim, mtim, flags)
	})
}

func (s *System[S]) FDPread(ctx context.Context, fd wasi.FD, iovs [][]byte, offset wasi.FileSize) (wasi.Size, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.Size, wasi.Errno) {
		return d.Pread(iovs, offset)
	})
}

func (s *System[S]) FDPreStatGet(ctx context.Context, fd wasi.FD) (wasi.Prestat, wasi.Errno) {
	return fdtable.With(s.fds, fd, (*fdtable.Descriptor[S]).Prestat)
}

func (s *System[S]) FDPreStatDirName(ctx context.Context, fd wasi.FD) (S, wasi.Errno) {
	return fdtable.With(s.fds, fd, (*fdtable.Descriptor[S]).PrestatDirName)
}

func (s *System[S]) FDPwrite(ctx context.Context, fd wasi.FD, iovs [][]byte, offset wasi.FileSize) (wasi.Size, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.Size, wasi.Errno) {
		return d.Pwrite(iovs, offset)
	})
}

func (s *System[S]) FDRead(ctx context.Context, fd wasi.FD, iovs [][]byte) (wasi.Size, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.Size, wasi.Errno) {
		return d.Read(iovs)
	})
}

func (s *System[S]) FDReadDir(ctx context.Context, fd wasi.FD, cookie wasi.DirCookie) (entry wasi.DirEntry[S], ok bool, errno wasi.Errno) {
	errno = fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) (errno wasi.Errno) {
		entry, ok, errno = d.ReadDir(cookie)
		return errno
	})
	return entry, ok, errno
}

func (s *System[S]) FDRenumber(ctx context.Context, from, to wasi.FD) wasi.Errno {
	return s.fds.Renumber(from, to)
}

func (s *System[S]) FDSeek(ctx context.Context, fd wasi.FD, offset wasi.FileDelta, whence wasi.Whence) (wasi.FileSize, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.FileSize, wasi.Errno) {
		return d.Seek(offset, whence)
	})
}

func (s *System[S]) FDSync(ctx context.Context, fd wasi.FD) wasi.Errno {
	return fdtable.Use(s.fds, fd, (*fdtable.Descriptor[S]).Sync)
}

func (s *System[S]) FDTell(ctx context.Context, fd wasi.FD) (wasi.FileSize, wasi.Errno) {
	return fdtable.With(s.fds, fd, (*fdtable.Descriptor[S]).Tell)
}

func (s *System[S]) FDWrite(ctx context.Context, fd wasi.FD, iovs [][]byte) (wasi.Size, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.Size, wasi.Errno) {
		return d.Write(iovs)
	})
}

func (s *System[S]) SockRecv(ctx context.Context, fd wasi.FD, iovs [][]byte, flags wasi.RIFlags) (n wasi.Size, oflags wasi.ROFlags, errno wasi.Errno) {
	errno = fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) (errno wasi.Errno) {
		n, oflags, errno = d.SockRecv(iovs, flags)
		return errno
	})
	return n, oflags, errno
}

func (s *System[S]) SockSend(ctx context.Context, fd wasi.FD, iovs [][]byte, flags wasi.SIFlags) (wasi.Size, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.Size, wasi.Errno) {
		return d.SockSend(iovs, flags)
	})
}

func (s *System[S]) SockShutdown(ctx context.Context, fd wasi.FD, flags wasi.SDFlags) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.SockShutdown(flags)
	})
}
