package abi

import (
	"github.com/stealthrocket/wasihost/internal/buffer"
	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wasihost/internal/wire"
)

// maxIOVecs is the largest number of buffers accepted in a single vectored
// I/O operation, matching IOV_MAX on Linux.
const maxIOVecs = 1024

// decoder accumulates the first error encountered while converting the raw
// arguments of a host function, so that a function can decode all its
// arguments before checking whether the call must be rejected.
type decoder struct {
	err error
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) ok() bool { return d.err == nil }

// decode narrows raw to the wire representation W and converts it with from.
// Values which do not fit in W are rejected.
func decode[W wire.U8 | wire.U16 | wire.U32 | wire.U64, T any](d *decoder, raw uint64, from func(W) (T, error)) (v T) {
	w := W(raw)
	if uint64(w) != raw {
		d.fail(&wasi.ConversionError{Type: "integer", Value: raw})
		return v
	}
	var err error
	if v, err = from(w); err != nil {
		d.fail(err)
	}
	return v
}

func decodeString[S wasi.String[S]](d *decoder, mem guest.Memory, ptr, length uint32) (s S) {
	s, err := wasi.StringFromNative[S](mem.Bytes(wire.Ptr[wire.U8](ptr), length))
	if err != nil {
		d.fail(err)
	}
	return s
}

// decodeIOVecs loads the array of iovecs at ptr and verifies that each buffer
// lies within the guest memory.
func decodeIOVecs(d *decoder, mem guest.Memory, ptr, count uint32) []wire.IOVec {
	if count > maxIOVecs {
		d.fail(&wasi.ConversionError{Type: "iovec count", Value: uint64(count)})
		return nil
	}
	s := guest.SliceOf(mem, wire.MakeSlicePtr[wire.IOVec](ptr, count))
	iovs := make([]wire.IOVec, s.Len())
	for i := range iovs {
		iovs[i] = s.Load(i)
		mem.Bytes(iovs[i].Buf, uint32(iovs[i].BufLen))
	}
	// Buffers may overlap; the host never moves more bytes than the guest
	// memory holds in a single call.
	limit := uint64(mem.Size())
	for i := range iovs {
		n := uint64(iovs[i].BufLen)
		if n >= limit {
			iovs[i].BufLen = wire.U32(limit)
			return iovs[:i+1]
		}
		limit -= n
	}
	return iovs
}

func totalLen(iovs []wire.IOVec) (n int) {
	for _, iov := range iovs {
		n += int(iov.BufLen)
	}
	return n
}

// buffers stages the data of host calls. Imports never retain the buffers
// they receive once they have returned.
var buffers buffer.Pool

// copyIn returns host copies of the guest buffers. The caller puts the
// returned buffer back into the pool after the host call.
func copyIn(mem guest.Memory, iovs []wire.IOVec) ([][]byte, *buffer.Buffer) {
	bufs, b := scratch(iovs)
	for i, iov := range iovs {
		copy(bufs[i], mem.Bytes(iov.Buf, uint32(iov.BufLen)))
	}
	return bufs, b
}

// scratch returns host buffers with the same sizes as the guest buffers, all
// carved out of a single pooled buffer.
func scratch(iovs []wire.IOVec) ([][]byte, *buffer.Buffer) {
	b := buffers.Get(int64(totalLen(iovs)))
	buf := b.Data
	out := make([][]byte, len(iovs))
	for i, iov := range iovs {
		n := int(iov.BufLen)
		out[i], buf = buf[:n:n], buf[n:]
	}
	return out, b
}

// copyOut distributes data across the guest buffers, in order.
func copyOut(mem guest.Memory, iovs []wire.IOVec, data []byte) {
	for _, iov := range iovs {
		if len(data) == 0 {
			return
		}
		n := copy(mem.Bytes(iov.Buf, uint32(iov.BufLen)), data)
		data = data[n:]
	}
}

func storeU32(mem guest.Memory, ptr uint32, v uint32) {
	guest.Store(mem, wire.Ptr[wire.U32](ptr), wire.U32(v))
}

func storeU64(mem guest.Memory, ptr uint32, v uint64) {
	guest.Store(mem, wire.Ptr[wire.U64](ptr), wire.U64(v))
}
