package wasi

import (
	"context"
	"fmt"
)

// Exit is the control transfer produced by proc_exit. It is returned by
// Imports.ProcExit to carry the exit code up to the code running the guest,
// which never resumes the guest after receiving it.
type Exit struct {
	Code ExitCode
}

func (e *Exit) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Imports is the interface of the functions that a WASI snapshot-preview-1
// guest imports, expressed with rich types.
//
// Methods return an Errno as their last result; ESUCCESS indicates that the
// other results are valid. Buffers passed to the methods are owned by the
// host and may be retained until the method returns.
type Imports[S String[S]] interface {
	ArgsGet(ctx context.Context) ([]S, Errno)

	EnvironGet(ctx context.Context) ([]S, Errno)

	ClockResGet(ctx context.Context, id ClockID) (Timestamp, Errno)

	ClockTimeGet(ctx context.Context, id ClockID, precision Timestamp) (Timestamp, Errno)

	FDAdvise(ctx context.Context, fd FD, offset, length FileSize, advice Advice) Errno

	FDAllocate(ctx context.Context, fd FD, offset, length FileSize) Errno

	FDClose(ctx context.Context, fd FD) Errno

	FDDataSync(ctx context.Context, fd FD) Errno

	FDStatGet(ctx context.Context, fd FD) (FDStat, Errno)

	FDStatSetFlags(ctx context.Context, fd FD, flags FDFlags) Errno

	FDStatSetRights(ctx context.Context, fd FD, base, inheriting Rights) Errno

	FDFileStatGet(ctx context.Context, fd FD) (FileStat, Errno)

	FDFileStatSetSize(ctx context.Context, fd FD, size FileSize) Errno

	FDFileStatSetTimes(ctx context.Context, fd FD, atim, mtim Timestamp, flags FSTFlags) Errno

	FDPread(ctx context.Context, fd FD, iovs [][]byte, offset FileSize) (Size, Errno)

	FDPreStatGet(ctx context.Context, fd FD) (Prestat, Errno)

	FDPreStatDirName(ctx context.Context, fd FD) (S, Errno)

	FDPwrite(ctx context.Context, fd FD, iovs [][]byte, offset FileSize) (Size, Errno)

	FDRead(ctx context.Context, fd FD, iovs [][]byte) (Size, Errno)

	// FDReadDir returns the entry of the directory at position cookie. The
	// boolean result is false when the enumeration is exhausted.
	FDReadDir(ctx context.Context, fd FD, cookie DirCookie) (DirEntry[S], bool, Errno)

	FDRenumber(ctx context.Context, from, to FD) Errno

	FDSeek(ctx context.Context, fd FD, offset FileDelta, whence Whence) (FileSize, Errno)

	FDSync(ctx context.Context, fd FD) Errno

	FDTell(ctx context.Context, fd FD) (FileSize, Errno)

	FDWrite(ctx context.Context, fd FD, iovs [][]byte) (Size, Errno)

	PathCreateDirectory(ctx context.Context, fd FD, path S) Errno

	PathFileStatGet(ctx context.Context, fd FD, flags LookupFlags, path S) (FileStat, Errno)

	PathFileStatSetTimes(ctx context.Context, fd FD, flags LookupFlags, path S, atim, mtim Timestamp, fstFlags FSTFlags) Errno

	PathLink(ctx context.Context, oldFD FD, oldFlags LookupFlags, oldPath S, newFD FD, newPath S) Errno

	PathOpen(ctx context.Context, fd FD, dirFlags LookupFlags, path S, oflags OFlags, base, inheriting Rights, fdFlags FDFlags) (FD, Errno)

	// PathReadLink writes the target of the symbolic link to buf, truncating
	// it if it is longer, and returns the number of bytes written.
	PathReadLink(ctx context.Context, fd FD, path S, buf []byte) (Size, Errno)

	PathRemoveDirectory(ctx context.Context, fd FD, path S) Errno

	PathRename(ctx context.Context, fd FD, oldPath S, newFD FD, newPath S) Errno

	PathSymlink(ctx context.Context, oldPath S, fd FD, newPath S) Errno

	PathUnlinkFile(ctx context.Context, fd FD, path S) Errno

	// PollOneOff waits for at least one of the subscriptions to trigger and
	// returns the events that were produced.
	PollOneOff(ctx context.Context, subscriptions []Subscription) ([]Event, Errno)

	// ProcExit releases the resources of the process. The guest never
	// resumes after this call.
	ProcExit(ctx context.Context, code ExitCode) *Exit

	ProcRaise(ctx context.Context, signal Signal) Errno

	SchedYield(ctx context.Context) Errno

	RandomGet(ctx context.Context, buf []byte) Errno

	SockRecv(ctx context.Context, fd FD, iovs [][]byte, flags RIFlags) (Size, ROFlags, Errno)

	SockSend(ctx context.Context, fd FD, iovs [][]byte, flags SIFlags) (Size, Errno)

	SockShutdown(ctx context.Context, fd FD, flags SDFlags) Errno
}
