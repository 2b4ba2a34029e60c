package abi_test

import (
	"context"
	"testing"

	"github.com/stealthrocket/wasihost/internal/abi"
	"github.com/stealthrocket/wasihost/internal/assert"
	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wasihost/internal/wire"
	"github.com/stealthrocket/wazergo/wasm"
)

// stub implements the functions exercised by the tests. Calling any other
// function panics on the nil embedded interface.
type stub struct {
	wasi.Imports[wasi.UTF8]

	args    []wasi.UTF8
	env     []wasi.UTF8
	entries []wasi.DirEntry[wasi.UTF8]
	// badEntry is the cookie of an entry whose name cannot be represented.
	badEntry int
	input   string
	output  []byte
	events  []wasi.Event
	polled  []wasi.Subscription
}

func (s *stub) ArgsGet(context.Context) ([]wasi.UTF8, wasi.Errno) {
	return s.args, wasi.ESUCCESS
}

func (s *stub) EnvironGet(context.Context) ([]wasi.UTF8, wasi.Errno) {
	return s.env, wasi.ESUCCESS
}

func (s *stub) FDReadDir(ctx context.Context, fd wasi.FD, cookie wasi.DirCookie) (wasi.DirEntry[wasi.UTF8], bool, wasi.Errno) {
	if s.badEntry != 0 && int(cookie) == s.badEntry {
		return wasi.DirEntry[wasi.UTF8]{}, false, wasi.EILSEQ
	}
	if int(cookie) >= len(s.entries) {
		return wasi.DirEntry[wasi.UTF8]{}, false, wasi.ESUCCESS
	}
	return s.entries[cookie], true, wasi.ESUCCESS
}

func (s *stub) FDRead(ctx context.Context, fd wasi.FD, iovs [][]byte) (wasi.Size, wasi.Errno) {
	n := 0
	for _, iov := range iovs {
		n += copy(iov, s.input[n:])
	}
	return wasi.Size(n), wasi.ESUCCESS
}

func (s *stub) FDWrite(ctx context.Context, fd wasi.FD, iovs [][]byte) (wasi.Size, wasi.Errno) {
	n := 0
	for _, iov := range iovs {
		s.output = append(s.output, iov...)
		n += len(iov)
	}
	return wasi.Size(n), wasi.ESUCCESS
}

func (s *stub) FDPreStatDirName(ctx context.Context, fd wasi.FD) (wasi.UTF8, wasi.Errno) {
	if fd != 3 {
		return "", wasi.EBADF
	}
	return "/data", wasi.ESUCCESS
}

func (s *stub) PollOneOff(ctx context.Context, subs []wasi.Subscription) ([]wasi.Event, wasi.Errno) {
	s.polled = subs
	return s.events, wasi.ESUCCESS
}

func (s *stub) RandomGet(ctx context.Context, b []byte) wasi.Errno {
	for i := range b {
		b[i] = byte(i + 1)
	}
	return wasi.ESUCCESS
}

const memorySize = 65536

func newMemory() guest.Memory {
	return guest.New(wasm.NewFixedSizeMemory(memorySize))
}

func load32(mem guest.Memory, ptr uint32) uint32 {
	return uint32(guest.Load(mem, wire.Ptr[wire.U32](ptr)))
}

func TestArgs(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	m := abi.NewModule[wasi.UTF8](&stub{args: []wasi.UTF8{"prog", "--flag"}})

	assert.Equal(t, m.ArgsSizesGet(ctx, mem, 0, 4), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 0), 2)
	assert.Equal(t, load32(mem, 4), 12)

	assert.Equal(t, m.ArgsGet(ctx, mem, 16, 64), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 16), 64)
	assert.Equal(t, load32(mem, 20), 69)
	assert.Equal(t, string(mem.Bytes(64, 12)), "prog\x00--flag\x00")
}

func TestEnviron(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	m := abi.NewModule[wasi.UTF8](&stub{env: []wasi.UTF8{"X=1"}})

	assert.Equal(t, m.EnvironSizesGet(ctx, mem, 0, 4), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 0), 1)
	assert.Equal(t, load32(mem, 4), 4)

	assert.Equal(t, m.EnvironGet(ctx, mem, 8, 32), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 8), 32)
	assert.Equal(t, string(mem.Bytes(32, 4)), "X=1\x00")
}

func TestEmptyArgs(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	m := abi.NewModule[wasi.UTF8](&stub{})

	assert.Equal(t, m.ArgsSizesGet(ctx, mem, 0, 4), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 0), 0)
	assert.Equal(t, load32(mem, 4), 0)
	assert.Equal(t, m.ArgsGet(ctx, mem, 8, 16), wasi.ESUCCESS)
}

func TestReadDir(t *testing.T) {
	ctx := context.Background()
	s := &stub{
		entries: []wasi.DirEntry[wasi.UTF8]{
			{Next: 1, Inode: 10, Type: wasi.DirectoryType, Name: "."},
			{Next: 2, Inode: 11, Type: wasi.DirectoryType, Name: ".."},
			{Next: 3, Inode: 12, Type: wasi.RegularFileType, Name: "a.txt"},
		},
	}
	m := abi.NewModule[wasi.UTF8](s)

	tests := []struct {
		scenario string
		cookie   uint64
		size     uint32
		used     uint32
	}{
		{"everything fits", 0, 256, 24 + 1 + 24 + 2 + 24 + 5},
		{"the last entry does not fit", 0, 64, 24 + 1 + 24 + 2},
		{"the buffer is smaller than one entry", 0, 10, 0},
		{"resuming from a cookie", 2, 64, 24 + 5},
		{"the enumeration is exhausted", 3, 64, 0},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			mem := newMemory()
			assert.Equal(t, m.FDReadDir(ctx, mem, 3, 1024, test.size, test.cookie, 0), wasi.ESUCCESS)
			assert.Equal(t, load32(mem, 0), test.used)
		})
	}

	mem := newMemory()
	assert.Equal(t, m.FDReadDir(ctx, mem, 3, 1024, 256, 2, 0), wasi.ESUCCESS)
	dirent := guest.Load(mem, wire.Ptr[wire.Dirent](1024))
	assert.Equal(t, dirent, wire.Dirent{Next: 3, Inode: 12, NameLen: 5, Type: wire.U8(wasi.RegularFileType)})
	assert.Equal(t, string(mem.Bytes(1024+24, 5)), "a.txt")
}

// readDirAll enumerates the directory with buffers of the given size, resuming
// from the cookie of the last entry of each call. It stops when a call yields
// no entries.
func readDirAll(t *testing.T, m *abi.Module[wasi.UTF8], size uint32) (names []string, cookie uint64) {
	ctx := context.Background()
	mem := newMemory()
	const buf = 1024

	for {
		assert.Equal(t, m.FDReadDir(ctx, mem, 3, buf, size, cookie, 0), wasi.ESUCCESS)
		used := load32(mem, 0)
		if used == 0 {
			return names, cookie
		}
		assert.Less(t, used-1, size)

		for off := uint32(0); off < used; {
			dirent := guest.Load(mem, wire.Ptr[wire.Dirent](buf+off))
			off += 24
			names = append(names, string(mem.Bytes(wire.Ptr[wire.U8](buf+off), uint32(dirent.NameLen))))
			off += uint32(dirent.NameLen)
			assert.Equal(t, off <= used, true)
			cookie = uint64(dirent.Next)
		}
	}
}

func TestReadDirPagination(t *testing.T) {
	s := &stub{
		entries: []wasi.DirEntry[wasi.UTF8]{
			{Next: 1, Inode: 10, Type: wasi.DirectoryType, Name: "."},
			{Next: 2, Inode: 11, Type: wasi.DirectoryType, Name: ".."},
			{Next: 3, Inode: 12, Type: wasi.RegularFileType, Name: "a.txt"},
			{Next: 4, Inode: 13, Type: wasi.RegularFileType, Name: "b"},
			{Next: 5, Inode: 14, Type: wasi.DirectoryType, Name: "subdir"},
		},
	}
	m := abi.NewModule[wasi.UTF8](s)
	all := []string{".", "..", "a.txt", "b", "subdir"}

	for size := uint32(0); size <= 200; size++ {
		names, cookie := readDirAll(t, m, size)

		if size >= 24+6 {
			assert.EqualAll(t, names, all)
			assert.Equal(t, cookie, 5)
			continue
		}
		// Smaller buffers stop at the first entry which does not fit, after
		// delivering every entry before it exactly once.
		assert.EqualAll(t, names, all[:cookie])
		assert.Less(t, size, 24+uint32(len(all[cookie])))
	}
}

func TestReadDirInvalidName(t *testing.T) {
	ctx := context.Background()
	s := &stub{
		entries: []wasi.DirEntry[wasi.UTF8]{
			{Next: 1, Inode: 10, Type: wasi.DirectoryType, Name: "."},
			{Next: 2, Inode: 11, Type: wasi.DirectoryType, Name: ".."},
			{Next: 3, Inode: 12, Type: wasi.RegularFileType, Name: "a.txt"},
		},
		badEntry: 2,
	}
	m := abi.NewModule[wasi.UTF8](s)
	mem := newMemory()

	assert.Equal(t, m.FDReadDir(ctx, mem, 3, 1024, 256, 0, 0), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 0), 24+1+24+2)

	assert.Equal(t, m.FDReadDir(ctx, mem, 3, 1024, 256, 2, 0), wasi.EILSEQ)
}

func TestReadScatter(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	m := abi.NewModule[wasi.UTF8](&stub{input: "hello"})

	dst := mem.Bytes(100, 200)
	for i := range dst {
		dst[i] = 0xFF
	}
	iovs := guest.SliceOf(mem, wire.MakeSlicePtr[wire.IOVec](0, 2))
	iovs.Store(0, wire.IOVec{Buf: 100, BufLen: 4})
	iovs.Store(1, wire.IOVec{Buf: 200, BufLen: 16})

	assert.Equal(t, m.FDRead(ctx, mem, 0, 0, 2, 32), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 32), 5)
	assert.Equal(t, string(mem.Bytes(100, 4)), "hell")
	assert.EqualAll(t, mem.Bytes(200, 3), []byte{'o', 0xFF, 0xFF})
}

func TestWriteGather(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	s := &stub{}
	m := abi.NewModule[wasi.UTF8](s)

	copy(mem.Bytes(100, 6), "hello ")
	copy(mem.Bytes(200, 5), "world")
	iovs := guest.SliceOf(mem, wire.MakeSlicePtr[wire.IOVec](0, 3))
	iovs.Store(0, wire.IOVec{Buf: 100, BufLen: 6})
	iovs.Store(1, wire.IOVec{Buf: 0, BufLen: 0})
	iovs.Store(2, wire.IOVec{Buf: 200, BufLen: 5})

	assert.Equal(t, m.FDWrite(ctx, mem, 1, 0, 3, 32), wasi.ESUCCESS)
	assert.Equal(t, load32(mem, 32), 11)
	assert.Equal(t, string(s.output), "hello world")

	// The host holds copies: the guest memory can change afterwards.
	copy(mem.Bytes(100, 6), "HELLO ")
	assert.Equal(t, string(s.output), "hello world")
}

func TestInvalidArguments(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	// Every call below must be rejected before reaching the implementation,
	// which would panic.
	m := abi.NewModule[wasi.UTF8](&stub{})
	copy(mem.Bytes(512, 2), "\xff\xfe")

	tests := []struct {
		scenario string
		call     func() wasi.Errno
	}{
		{"clock id", func() wasi.Errno { return m.ClockTimeGet(ctx, mem, 4, 0, 0) }},
		{"advice", func() wasi.Errno { return m.FDAdvise(ctx, mem, 3, 0, 0, 6) }},
		{"fd flags", func() wasi.Errno { return m.FDStatSetFlags(ctx, mem, 3, 1<<5) }},
		{"rights", func() wasi.Errno { return m.FDStatSetRights(ctx, mem, 3, 1<<29, 0) }},
		{"fst flags", func() wasi.Errno { return m.FDFileStatSetTimes(ctx, mem, 3, 0, 0, 1<<4) }},
		{"whence", func() wasi.Errno { return m.FDSeek(ctx, mem, 3, 0, 3, 0) }},
		{"whence wider than a byte", func() wasi.Errno { return m.FDSeek(ctx, mem, 3, 0, 0x100, 0) }},
		{"too many iovecs", func() wasi.Errno { return m.FDWrite(ctx, mem, 1, 0, 1025, 0) }},
		{"lookup flags", func() wasi.Errno { return m.PathFileStatGet(ctx, mem, 3, 2, 0, 0, 0) }},
		{"oflags", func() wasi.Errno { return m.PathOpen(ctx, mem, 3, 0, 0, 0, 1<<4, 0, 0, 0, 0) }},
		{"path encoding", func() wasi.Errno { return m.PathUnlinkFile(ctx, mem, 3, 512, 2) }},
		{"signal", func() wasi.Errno { return m.ProcRaise(ctx, mem, 31) }},
		{"recv flags", func() wasi.Errno { return m.SockRecv(ctx, mem, 3, 0, 0, 4, 0, 0) }},
		{"send flags", func() wasi.Errno { return m.SockSend(ctx, mem, 3, 0, 0, 1, 0) }},
		{"shutdown flags", func() wasi.Errno { return m.SockShutdown(ctx, mem, 3, 4) }},
		{"no subscriptions", func() wasi.Errno { return m.PollOneOff(ctx, mem, 0, 64, 0, 0) }},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			assert.Equal(t, test.call(), wasi.EINVAL)
		})
	}
}

func TestPollOneOff(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	s := &stub{
		events: []wasi.Event{
			{UserData: 1, Type: wasi.ClockEvent},
			{UserData: 2, Type: wasi.FDReadEvent, FDReadWrite: wasi.EventFDReadWrite{NBytes: 1}},
			{UserData: 3, Type: wasi.ClockEvent},
		},
	}
	m := abi.NewModule[wasi.UTF8](s)

	subs := guest.SliceOf(mem, wire.MakeSlicePtr[wire.Subscription](0, 2))
	subs.Store(0, wasi.Subscription{
		UserData: 1,
		Event:    wasi.SubscriptionClock{ID: wasi.Monotonic, Timeout: 1000},
	}.ToNative())
	subs.Store(1, wasi.Subscription{
		UserData: 2,
		Event:    wasi.SubscriptionFDRead{FD: 0},
	}.ToNative())

	assert.Equal(t, m.PollOneOff(ctx, mem, 0, 256, 2, 512), wasi.ESUCCESS)
	assert.Equal(t, len(s.polled), 2)
	assert.Equal(t, s.polled[1].Event.(wasi.SubscriptionFDRead).FD, 0)
	assert.Equal(t, load32(mem, 512), 2)

	events := guest.SliceOf(mem, wire.MakeSlicePtr[wire.Event](256, 2))
	assert.Equal(t, events.Load(0), s.events[0].ToNative())
	assert.Equal(t, events.Load(1), s.events[1].ToNative())

	// An unknown event type is rejected.
	guest.Store(mem, wire.Ptr[wire.U8](8), 3)
	s.polled = nil
	assert.Equal(t, m.PollOneOff(ctx, mem, 0, 256, 2, 512), wasi.EINVAL)
	assert.Equal(t, len(s.polled), 0)
}

func TestPreStatDirName(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	m := abi.NewModule[wasi.UTF8](&stub{})

	assert.Equal(t, m.FDPreStatDirName(ctx, mem, 3, 0, 4), wasi.EOVERFLOW)
	assert.Equal(t, m.FDPreStatDirName(ctx, mem, 3, 0, 8), wasi.ESUCCESS)
	assert.Equal(t, string(mem.Bytes(0, 5)), "/data")
	assert.Equal(t, m.FDPreStatDirName(ctx, mem, 4, 0, 8), wasi.EBADF)
}

func TestRandomGet(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	m := abi.NewModule[wasi.UTF8](&stub{})

	assert.Equal(t, m.RandomGet(ctx, mem, 8, 4), wasi.ESUCCESS)
	assert.EqualAll(t, mem.Bytes(8, 4), []byte{1, 2, 3, 4})
}

func TestOutOfBounds(t *testing.T) {
	ctx := context.Background()
	mem := newMemory()
	m := abi.NewModule[wasi.UTF8](&stub{args: []wasi.UTF8{"prog"}})

	assert.Panic(t, func() { m.ArgsGet(ctx, mem, 0, memorySize-2) })
	assert.Panic(t, func() { m.RandomGet(ctx, mem, memorySize-2, 4) })
}

func TestHostModule(t *testing.T) {
	fns := abi.HostModule[wasi.UTF8]().Functions()
	assert.Equal(t, len(fns), 45)

	for name, fn := range fns {
		assert.Equal(t, fn.Name, name)
		if name == "proc_exit" {
			assert.Equal(t, len(fn.Results), 0)
		} else {
			assert.Equal(t, len(fn.Results), 1)
		}
	}
	assert.Equal(t, len(fns["path_open"].Params), 9)
	assert.Equal(t, len(fns["sched_yield"].Params), 0)
}
