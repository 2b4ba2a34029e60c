package host

import (
	"context"

	"github.com/stealthrocket/wasihost/internal/fdtable"
	"github.com/stealthrocket/wasihost/internal/wasi"
)

func (s *System[S]) PathCreateDirectory(ctx context.Context, fd wasi.FD, path S) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.PathCreateDirectory(path)
	})
}

func (s *System[S]) PathFileStatGet(ctx context.Context, fd wasi.FD, flags wasi.LookupFlags, path S) (wasi.FileStat, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.FileStat, wasi.Errno) {
		return d.PathFileStat(flags, path)
	})
}

func (s *System[S]) PathFileStatSetTimes(ctx context.Context, fd wasi.FD, flags wasi.LookupFlags, path S, atim, mtim wasi.Timestamp, fstFlags wasi.FSTFlags) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.PathFileStatSetTimes(flags, path, atim, mtim, fstFlags)
	})
}

func (s *System[S]) PathLink(ctx context.Context, oldFD wasi.FD, oldFlags wasi.LookupFlags, oldPath S, newFD wasi.FD, newPath S) wasi.Errno {
	return fdtable.UsePair(s.fds, oldFD, newFD, func(oldDir, newDir *fdtable.Descriptor[S]) wasi.Errno {
		return oldDir.PathLink(oldFlags, oldPath, newDir, newPath)
	})
}

func (s *System[S]) PathOpen(ctx context.Context, fd wasi.FD, dirFlags wasi.LookupFlags, path S, oflags wasi.OFlags, base, inheriting wasi.Rights, fdFlags wasi.FDFlags) (wasi.FD, wasi.Errno) {
	rights := fdtable.Rights{Base: base, Inheriting: inheriting}
	return s.fds.Open(fd, dirFlags, path, oflags, rights, fdFlags)
}

func (s *System[S]) PathReadLink(ctx context.Context, fd wasi.FD, path S, buf []byte) (wasi.Size, wasi.Errno) {
	return fdtable.With(s.fds, fd, func(d *fdtable.Descriptor[S]) (wasi.Size, wasi.Errno) {
		return d.PathReadLink(path, buf)
	})
}

func (s *System[S]) PathRemoveDirectory(ctx context.Context, fd wasi.FD, path S) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.PathRemoveDirectory(path)
	})
}

func (s *System[S]) PathRename(ctx context.Context, fd wasi.FD, oldPath S, newFD wasi.FD, newPath S) wasi.Errno {
	return fdtable.UsePair(s.fds, fd, newFD, func(oldDir, newDir *fdtable.Descriptor[S]) wasi.Errno {
		return oldDir.PathRename(oldPath, newDir, newPath)
	})
}

func (s *System[S]) PathSymlink(ctx context.Context, oldPath S, fd wasi.FD, newPath S) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.PathSymlink(oldPath, newPath)
	})
}

func (s *System[S]) PathUnlinkFile(ctx context.Context, fd wasi.FD, path S) wasi.Errno {
	return fdtable.Use(s.fds, fd, func(d *fdtable.Descriptor[S]) wasi.Errno {
		return d.PathUnlinkFile(path)
	})
}
