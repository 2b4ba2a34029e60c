package abi

import (
	"context"

	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wasihost/internal/wire"
)

func (m *Module[S]) FDAdvise(ctx context.Context, mem guest.Memory, fd uint32, offset, length uint64, advice uint32) wasi.Errno {
	var d decoder
	adv := decode(&d, uint64(advice), wasi.AdviceFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.FDAdvise(ctx, wasi.FD(fd), wasi.FileSize(offset), wasi.FileSize(length), adv)
}

func (m *Module[S]) FDAllocate(ctx context.Context, mem guest.Memory, fd uint32, offset, length uint64) wasi.Errno {
	return m.imports.FDAllocate(ctx, wasi.FD(fd), wasi.FileSize(offset), wasi.FileSize(length))
}

func (m *Module[S]) FDClose(ctx context.Context, mem guest.Memory, fd uint32) wasi.Errno {
	return m.imports.FDClose(ctx, wasi.FD(fd))
}

func (m *Module[S]) FDDataSync(ctx context.Context, mem guest.Memory, fd uint32) wasi.Errno {
	return m.imports.FDDataSync(ctx, wasi.FD(fd))
}

func (m *Module[S]) FDStatGet(ctx context.Context, mem guest.Memory, fd, buf uint32) wasi.Errno {
	stat, errno := m.imports.FDStatGet(ctx, wasi.FD(fd))
	if errno == wasi.ESUCCESS {
		guest.Store(mem, wire.Ptr[wire.FDStat](buf), stat.ToNative())
	}
	return errno
}

func (m *Module[S]) FDStatSetFlags(ctx context.Context, mem guest.Memory, fd, flags uint32) wasi.Errno {
	var d decoder
	f := decode(&d, uint64(flags), wasi.FDFlagsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.FDStatSetFlags(ctx, wasi.FD(fd), f)
}

func (m *Module[S]) FDStatSetRights(ctx context.Context, mem guest.Memory, fd uint32, base, inheriting uint64) wasi.Errno {
	var d decoder
	b := decode(&d, base, wasi.RightsFromNative)
	i := decode(&d, inheriting, wasi.RightsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.FDStatSetRights(ctx, wasi.FD(fd), b, i)
}

func (m *Module[S]) FDFileStatGet(ctx context.Context, mem guest.Memory, fd, buf uint32) wasi.Errno {
	stat, errno := m.imports.FDFileStatGet(ctx, wasi.FD(fd))
	if errno == wasi.ESUCCESS {
		guest.Store(mem, wire.Ptr[wire.FileStat](buf), stat.ToNative())
	}
	return errno
}

func (m *Module[S]) FDFileStatSetSize(ctx context.Context, mem guest.Memory, fd uint32, size uint64) wasi.Errno {
	return m.imports.FDFileStatSetSize(ctx, wasi.FD(fd), wasi.FileSize(size))
}

func (m *Module[S]) FDFileStatSetTimes(ctx context.Context, mem guest.Memory, fd uint32, atim, mtim uint64, flags uint32) wasi.Errno {
	var d decoder
	f := decode(&d, uint64(flags), wasi.FSTFlagsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.FDFileStatSetTimes(ctx, wasi.FD(fd), wasi.Timestamp(atim), wasi.Timestamp(mtim), f)
}

func (m *Module[S]) FDPread(ctx context.Context, mem guest.Memory, fd, iovs, iovsLen uint32, offset uint64, nread uint32) wasi.Errno {
	var d decoder
	vecs := decodeIOVecs(&d, mem, iovs, iovsLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	bufs, b := scratch(vecs)
	defer buffers.Put(b)
	n, errno := m.imports.FDPread(ctx, wasi.FD(fd), bufs, wasi.FileSize(offset))
	if errno == wasi.ESUCCESS {
		copyOut(mem, vecs, b.Data[:n])
		storeU32(mem, nread, uint32(n))
	}
	return errno
}

func (m *Module[S]) FDPreStatGet(ctx context.Context, mem guest.Memory, fd, buf uint32) wasi.Errno {
	stat, errno := m.imports.FDPreStatGet(ctx, wasi.FD(fd))
	if errno == wasi.ESUCCESS {
		guest.Store(mem, wire.Ptr[wire.Prestat](buf), stat.ToNative())
	}
	return errno
}

// FDPreStatDirName writes the name of a pre-opened directory to the guest
// buffer, without a NUL terminator. The call fails with EOVERFLOW if the
// buffer is too short to hold the name.
func (m *Module[S]) FDPreStatDirName(ctx context.Context, mem guest.Memory, fd, path, pathLen uint32) wasi.Errno {
	dst := mem.Bytes(wire.Ptr[wire.U8](path), pathLen)
	name, errno := m.imports.FDPreStatDirName(ctx, wasi.FD(fd))
	if errno != wasi.ESUCCESS {
		return errno
	}
	b := name.Bytes()
	if len(b) > len(dst) {
		return wasi.EOVERFLOW
	}
	copy(dst, b)
	return wasi.ESUCCESS
}

func (m *Module[S]) FDPwrite(ctx context.Context, mem guest.Memory, fd, iovs, iovsLen uint32, offset uint64, nwritten uint32) wasi.Errno {
	var d decoder
	vecs := decodeIOVecs(&d, mem, iovs, iovsLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	bufs, b := copyIn(mem, vecs)
	defer buffers.Put(b)
	n, errno := m.imports.FDPwrite(ctx, wasi.FD(fd), bufs, wasi.FileSize(offset))
	if errno == wasi.ESUCCESS {
		storeU32(mem, nwritten, uint32(n))
	}
	return errno
}

func (m *Module[S]) FDRead(ctx context.Context, mem guest.Memory, fd, iovs, iovsLen, nread uint32) wasi.Errno {
	var d decoder
	vecs := decodeIOVecs(&d, mem, iovs, iovsLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	bufs, b := scratch(vecs)
	defer buffers.Put(b)
	n, errno := m.imports.FDRead(ctx, wasi.FD(fd), bufs)
	if errno == wasi.ESUCCESS {
		copyOut(mem, vecs, b.Data[:n])
		storeU32(mem, nread, uint32(n))
	}
	return errno
}

// FDReadDir fills the guest buffer with directory entries, starting at the
// entry designated by cookie. Each entry is a dirent header immediately
// followed by the name. Entries are never truncated: the first entry which
// does not fit ends the call, so a byte count lower than the buffer size does
// not imply that the enumeration is complete. The guest resumes with the Next
// cookie of the last entry it received.
func (m *Module[S]) FDReadDir(ctx context.Context, mem guest.Memory, fd, buf, bufLen uint32, cookie uint64, bufUsed uint32) wasi.Errno {
	dst := mem.Bytes(wire.Ptr[wire.U8](buf), bufLen)
	b := buffers.Get(int64(bufLen))
	defer buffers.Put(b)
	out := b.Data[:0:bufLen]
	direntSize := int(wire.LayoutOf[wire.Dirent]().Size)

	for next := wasi.DirCookie(cookie); ; {
		entry, ok, errno := m.imports.FDReadDir(ctx, wasi.FD(fd), next)
		if errno != wasi.ESUCCESS {
			// The entries already packed are delivered; the error is
			// reported when the guest resumes from the failing cookie.
			if len(out) > 0 {
				break
			}
			return errno
		}
		if !ok {
			break
		}
		name := entry.Name.Bytes()
		size := direntSize + len(name)
		if len(out)+size > cap(out) {
			break
		}
		off := len(out)
		out = out[:off+size]
		entry.Dirent().ToNative().Encode(out[off : off+direntSize])
		copy(out[off+direntSize:], name)
		next = entry.Next
	}

	copy(dst, out)
	storeU32(mem, bufUsed, uint32(len(out)))
	return wasi.ESUCCESS
}

func (m *Module[S]) FDRenumber(ctx context.Context, mem guest.Memory, from, to uint32) wasi.Errno {
	return m.imports.FDRenumber(ctx, wasi.FD(from), wasi.FD(to))
}

func (m *Module[S]) FDSeek(ctx context.Context, mem guest.Memory, fd uint32, offset int64, whence, newOffset uint32) wasi.Errno {
	var d decoder
	w := decode(&d, uint64(whence), wasi.WhenceFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	pos, errno := m.imports.FDSeek(ctx, wasi.FD(fd), wasi.FileDelta(offset), w)
	if errno == wasi.ESUCCESS {
		storeU64(mem, newOffset, uint64(pos))
	}
	return errno
}

func (m *Module[S]) FDSync(ctx context.Context, mem guest.Memory, fd uint32) wasi.Errno {
	return m.imports.FDSync(ctx, wasi.FD(fd))
}

func (m *Module[S]) FDTell(ctx context.Context, mem guest.Memory, fd, offset uint32) wasi.Errno {
	pos, errno := m.imports.FDTell(ctx, wasi.FD(fd))
	if errno == wasi.ESUCCESS {
		storeU64(mem, offset, uint64(pos))
	}
	return errno
}

func (m *Module[S]) FDWrite(ctx context.Context, mem guest.Memory, fd, iovs, iovsLen, nwritten uint32) wasi.Errno {
	var d decoder
	vecs := decodeIOVecs(&d, mem, iovs, iovsLen)
	if !d.ok() {
		return wasi.EINVAL
	}
	bufs, b := copyIn(mem, vecs)
	defer buffers.Put(b)
	n, errno := m.imports.FDWrite(ctx, wasi.FD(fd), bufs)
	if errno == wasi.ESUCCESS {
		storeU32(mem, nwritten, uint32(n))
	}
	return errno
}
