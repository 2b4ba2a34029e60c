package abi

import (
	"context"

	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wasihost/internal/wire"
)

func (m *Module[S]) PathCreateDirectory(ctx context.Context, mem guest.Memory, fd, path, pathLen uint32) wasi.Errno {
	var d decoder
	p := decodeString[S](&d, mem, path, pathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.PathCreateDirectory(ctx, wasi.FD(fd), p)
}

func (m *Module[S]) PathFileStatGet(ctx context.Context, mem guest.Memory, fd, flags, path, pathLen, buf uint32) wasi.Errno {
	var d decoder
	f := decode(&d, uint64(flags), wasi.LookupFlagsFromNative)
	p := decodeString[S](&d, mem, path, pathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	stat, errno := m.imports.PathFileStatGet(ctx, wasi.FD(fd), f, p)
	if errno == wasi.ESUCCESS {
		guest.Store(mem, wire.Ptr[wire.FileStat](buf), stat.ToNative())
	}
	return errno
}

func (m *Module[S]) PathFileStatSetTimes(ctx context.Context, mem guest.Memory, fd, flags, path, pathLen uint32, atim, mtim uint64, fstFlags uint32) wasi.Errno {
	var d decoder
	f := decode(&d, uint64(flags), wasi.LookupFlagsFromNative)
	p := decodeString[S](&d, mem, path, pathLen)
	t := decode(&d, uint64(fstFlags), wasi.FSTFlagsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.PathFileStatSetTimes(ctx, wasi.FD(fd), f, p, wasi.Timestamp(atim), wasi.Timestamp(mtim), t)
}

func (m *Module[S]) PathLink(ctx context.Context, mem guest.Memory, oldFD, oldFlags, oldPath, oldPathLen, newFD, newPath, newPathLen uint32) wasi.Errno {
	var d decoder
	f := decode(&d, uint64(oldFlags), wasi.LookupFlagsFromNative)
	op := decodeString[S](&d, mem, oldPath, oldPathLen)
	np := decodeString[S](&d, mem, newPath, newPathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.PathLink(ctx, wasi.FD(oldFD), f, op, wasi.FD(newFD), np)
}

func (m *Module[S]) PathOpen(ctx context.Context, mem guest.Memory, fd, dirFlags, path, pathLen, oflags uint32, base, inheriting uint64, fdFlags, openedFD uint32) wasi.Errno {
	var d decoder
	df := decode(&d, uint64(dirFlags), wasi.LookupFlagsFromNative)
	p := decodeString[S](&d, mem, path, pathLen)
	of := decode(&d, uint64(oflags), wasi.OFlagsFromNative)
	rb := decode(&d, base, wasi.RightsFromNative)
	ri := decode(&d, inheriting, wasi.RightsFromNative)
	ff := decode(&d, uint64(fdFlags), wasi.FDFlagsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	newFD, errno := m.imports.PathOpen(ctx, wasi.FD(fd), df, p, of, rb, ri, ff)
	if errno == wasi.ESUCCESS {
		storeU32(mem, openedFD, uint32(newFD))
	}
	return errno
}

func (m *Module[S]) PathReadLink(ctx context.Context, mem guest.Memory, fd, path, pathLen, buf, bufLen, bufUsed uint32) wasi.Errno {
	var d decoder
	p := decodeString[S](&d, mem, path, pathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	dst := mem.Bytes(wire.Ptr[wire.U8](buf), bufLen)
	b := buffers.Get(int64(bufLen))
	defer buffers.Put(b)
	n, errno := m.imports.PathReadLink(ctx, wasi.FD(fd), p, b.Data)
	if errno == wasi.ESUCCESS {
		copy(dst, b.Data[:n])
		storeU32(mem, bufUsed, uint32(n))
	}
	return errno
}

func (m *Module[S]) PathRemoveDirectory(ctx context.Context, mem guest.Memory, fd, path, pathLen uint32) wasi.Errno {
	var d decoder
	p := decodeString[S](&d, mem, path, pathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.PathRemoveDirectory(ctx, wasi.FD(fd), p)
}

func (m *Module[S]) PathRename(ctx context.Context, mem guest.Memory, fd, oldPath, oldPathLen, newFD, newPath, newPathLen uint32) wasi.Errno {
	var d decoder
	op := decodeString[S](&d, mem, oldPath, oldPathLen)
	np := decodeString[S](&d, mem, newPath, newPathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.PathRename(ctx, wasi.FD(fd), op, wasi.FD(newFD), np)
}

func (m *Module[S]) PathSymlink(ctx context.Context, mem guest.Memory, oldPath, oldPathLen, fd, newPath, newPathLen uint32) wasi.Errno {
	var d decoder
	op := decodeString[S](&d, mem, oldPath, oldPathLen)
	np := decodeString[S](&d, mem, newPath, newPathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.PathSymlink(ctx, op, wasi.FD(fd), np)
}

func (m *Module[S]) PathUnlinkFile(ctx context.Context, mem guest.Memory, fd, path, pathLen uint32) wasi.Errno {
	var d decoder
	p := decodeString[S](&d, mem, path, pathLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.PathUnlinkFile(ctx, wasi.FD(fd), p)
}
