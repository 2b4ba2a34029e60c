package abi

import (
	"context"
	"math"

	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wasihost/internal/wire"
)

// ArgsSizesGet writes the number of arguments to argc and the size of the
// buffer needed to hold them, NUL terminators included, to size.
func (m *Module[S]) ArgsSizesGet(ctx context.Context, mem guest.Memory, argc, size uint32) wasi.Errno {
	args, errno := m.imports.ArgsGet(ctx)
	if errno != wasi.ESUCCESS {
		return errno
	}
	return storeSizes(mem, args, argc, size)
}

// ArgsGet writes the pointers to the arguments to argv and their contents,
// NUL terminated, to buf.
func (m *Module[S]) ArgsGet(ctx context.Context, mem guest.Memory, argv, buf uint32) wasi.Errno {
	args, errno := m.imports.ArgsGet(ctx)
	if errno != wasi.ESUCCESS {
		return errno
	}
	return storeStrings(mem, args, argv, buf)
}

func (m *Module[S]) EnvironSizesGet(ctx context.Context, mem guest.Memory, count, size uint32) wasi.Errno {
	env, errno := m.imports.EnvironGet(ctx)
	if errno != wasi.ESUCCESS {
		return errno
	}
	return storeSizes(mem, env, count, size)
}

func (m *Module[S]) EnvironGet(ctx context.Context, mem guest.Memory, envv, buf uint32) wasi.Errno {
	env, errno := m.imports.EnvironGet(ctx)
	if errno != wasi.ESUCCESS {
		return errno
	}
	return storeStrings(mem, env, envv, buf)
}

func storeSizes[S wasi.String[S]](mem guest.Memory, strs []S, count, size uint32) wasi.Errno {
	total := uint64(0)
	for _, s := range strs {
		total += uint64(len(s.Bytes())) + 1
	}
	if uint64(len(strs)) > math.MaxUint32 || total > math.MaxUint32 {
		return wasi.EOVERFLOW
	}
	storeU32(mem, count, uint32(len(strs)))
	storeU32(mem, size, uint32(total))
	return wasi.ESUCCESS
}

func storeStrings[S wasi.String[S]](mem guest.Memory, strs []S, ptrs, buf uint32) wasi.Errno {
	if uint64(len(strs)) > math.MaxUint32 {
		return wasi.EOVERFLOW
	}
	table := guest.SliceOf(mem, wire.MakeSlicePtr[wire.U32](ptrs, uint32(len(strs))))
	p := wire.Ptr[wire.U8](buf)
	for i, s := range strs {
		b := s.Bytes()
		n := uint32(len(b))
		table.Store(i, wire.U32(p))
		dst := mem.Bytes(p, n+1)
		copy(dst, b)
		dst[n] = 0
		p = p.Add(n + 1)
	}
	return wasi.ESUCCESS
}

func (m *Module[S]) ClockResGet(ctx context.Context, mem guest.Memory, id, res uint32) wasi.Errno {
	var d decoder
	clock := decode(&d, uint64(id), wasi.ClockIDFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	t, errno := m.imports.ClockResGet(ctx, clock)
	if errno == wasi.ESUCCESS {
		storeU64(mem, res, uint64(t))
	}
	return errno
}

func (m *Module[S]) ClockTimeGet(ctx context.Context, mem guest.Memory, id uint32, precision uint64, now uint32) wasi.Errno {
	var d decoder
	clock := decode(&d, uint64(id), wasi.ClockIDFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	t, errno := m.imports.ClockTimeGet(ctx, clock, wasi.Timestamp(precision))
	if errno == wasi.ESUCCESS {
		storeU64(mem, now, uint64(t))
	}
	return errno
}

func (m *Module[S]) ProcRaise(ctx context.Context, mem guest.Memory, signal uint32) wasi.Errno {
	var d decoder
	sig := decode(&d, uint64(signal), wasi.SignalFromNative)
	if !d.ok() {
		return wasi.EINVAL
	}
	return m.imports.ProcRaise(ctx, sig)
}

func (m *Module[S]) SchedYield(ctx context.Context, mem guest.Memory) wasi.Errno {
	return m.imports.SchedYield(ctx)
}

// RandomGet fills the guest buffer with random bytes. The guest memory is
// left untouched if the source of randomness fails.
func (m *Module[S]) RandomGet(ctx context.Context, mem guest.Memory, buf, bufLen uint32) wasi.Errno {
	dst := mem.Bytes(wire.Ptr[wire.U8](buf), bufLen)
	b := buffers.Get(int64(bufLen))
	defer buffers.Put(b)
	errno := m.imports.RandomGet(ctx, b.Data)
	if errno == wasi.ESUCCESS {
		copy(dst, b.Data)
	}
	return errno
}
