package abi

import (
	"context"

	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wasihost/internal/wire"
)

func (m *Module[S]) SockRecv(ctx context.Context, mem guest.Memory, fd, iovs, iovsLen, flags, nread, oflags uint32) wasi.Errno {
	var d decoder
	vecs := decodeIOVecs(&d, mem, iovs, iovsLen)
	f := decode(&d, uint64(flags), wasi.RIFlagsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	bufs, b := scratch(vecs)
	defer buffers.Put(b)
	n, ro, errno := m.imports.SockRecv(ctx, wasi.FD(fd), bufs, f)
	if errno == wasi.ESUCCESS {
		copyOut(mem, vecs, b.Data[:n])
		storeU32(mem, nread, uint32(n))
		guest.Store(mem, wire.Ptr[wire.U16](oflags), ro.ToNative())
	}
	return errno
}

func (m *Module[S]) SockSend(ctx context.Context, mem guest.Memory, fd, iovs, iovsLen, flags, nwritten uint32) wasi.Errno {
	var d decoder
	vecs := decodeIOVecs(&d, mem, iovs, iovsLen)
	f := decode(&d, uint64(flags), wasi.SIFlagsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	bufs, b := copyIn(mem, vecs)
	defer buffers.Put(b)
	n, errno := m.imports.SockSend(ctx, wasi.FD(fd), bufs, f)
	if errno == wasi.ESUCCESS {
		storeU32(mem, nwritten, uint32(n))
	}
	return errno
}

func (m *Module[S]) SockShutdown(ctx context.Context, mem guest.Memory, fd, how uint32) wasi.Errno {
	var d decoder
	f := decode(&d, uint64(how), wasi.SDFlagsFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.SockShutdown(ctx, wasi.FD(fd), f)
}
