package wasi

import (
	"fmt"
	"strings"

	"github.com/stealthrocket/wasihost/internal/wire"
)

// FD is a file descriptor number.
type FD uint32

// Size is a size in bytes of memory buffers.
type Size uint32

// FileSize is a size or offset in bytes of files.
type FileSize uint64

// FileDelta is a relative offset in a file.
type FileDelta int64

// Timestamp is a timestamp in nanoseconds.
type Timestamp uint64

// DirCookie is the position of an entry in a directory.
type DirCookie uint64

// Device is the identifier of a device containing a file system.
type Device uint64

// Inode is the serial number of a file.
type Inode uint64

// LinkCount is the number of hard links to a file.
type LinkCount uint64

// UserData is an opaque value passed through poll_oneoff.
type UserData uint64

// ExitCode is the exit code of a process.
type ExitCode uint32

// ClockID identifies a clock.
type ClockID uint32

const (
	Realtime ClockID = iota
	Monotonic
	ProcessCPUTimeID
	ThreadCPUTimeID
)

var clockIDNames = [...]string{"realtime", "monotonic", "process_cputime_id", "thread_cputime_id"}

func (c ClockID) String() string { return enumString(clockIDNames[:], c) }

func ClockIDFromNative(w wire.U32) (ClockID, error) {
	return enumFromNative[ClockID]("clockid", w, len(clockIDNames))
}

func (c ClockID) ToNative() wire.U32 { return wire.U32(c) }

// Whence is the base of a seek offset.
type Whence uint8

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
)

var whenceNames = [...]string{"set", "cur", "end"}

func (w Whence) String() string { return enumString(whenceNames[:], w) }

func WhenceFromNative(w wire.U8) (Whence, error) {
	return enumFromNative[Whence]("whence", w, len(whenceNames))
}

func (w Whence) ToNative() wire.U8 { return wire.U8(w) }

// FileType is the type of a file descriptor or file.
type FileType uint8

const (
	UnknownType FileType = iota
	BlockDeviceType
	CharacterDeviceType
	DirectoryType
	RegularFileType
	SocketDGramType
	SocketStreamType
	SymbolicLinkType
)

var fileTypeNames = [...]string{
	"unknown",
	"block_device",
	"character_device",
	"directory",
	"regular_file",
	"socket_dgram",
	"socket_stream",
	"symbolic_link",
}

func (f FileType) String() string { return enumString(fileTypeNames[:], f) }

func FileTypeFromNative(w wire.U8) (FileType, error) {
	return enumFromNative[FileType]("filetype", w, len(fileTypeNames))
}

func (f FileType) ToNative() wire.U8 { return wire.U8(f) }

// Advice is the access pattern announced with fd_advise.
type Advice uint8

const (
	Normal Advice = iota
	Sequential
	Random
	WillNeed
	DontNeed
	NoReuse
)

var adviceNames = [...]string{"normal", "sequential", "random", "willneed", "dontneed", "noreuse"}

func (a Advice) String() string { return enumString(adviceNames[:], a) }

func AdviceFromNative(w wire.U8) (Advice, error) {
	return enumFromNative[Advice]("advice", w, len(adviceNames))
}

func (a Advice) ToNative() wire.U8 { return wire.U8(a) }

// EventType is the type of a subscription and of the events it produces.
type EventType uint8

const (
	ClockEvent EventType = iota
	FDReadEvent
	FDWriteEvent
)

var eventTypeNames = [...]string{"clock", "fd_read", "fd_write"}

func (e EventType) String() string { return enumString(eventTypeNames[:], e) }

func EventTypeFromNative(w wire.U8) (EventType, error) {
	return enumFromNative[EventType]("eventtype", w, len(eventTypeNames))
}

func (e EventType) ToNative() wire.U8 { return wire.U8(e) }

// Signal is a signal number.
type Signal uint8

const (
	SIGNONE Signal = iota
	SIGHUP
	SIGINT
	SIGQUIT
	SIGILL
	SIGTRAP
	SIGABRT
	SIGBUS
	SIGFPE
	SIGKILL
	SIGUSR1
	SIGSEGV
	SIGUSR2
	SIGPIPE
	SIGALRM
	SIGTERM
	SIGCHLD
	SIGCONT
	SIGSTOP
	SIGTSTP
	SIGTTIN
	SIGTTOU
	SIGURG
	SIGXCPU
	SIGXFSZ
	SIGVTALRM
	SIGPROF
	SIGWINCH
	SIGPOLL
	SIGPWR
	SIGSYS
	signalCount
)

func SignalFromNative(w wire.U8) (Signal, error) {
	return enumFromNative[Signal]("signal", w, int(signalCount))
}

func (s Signal) ToNative() wire.U8 { return wire.U8(s) }

// PreopenType is the type of a pre-opened descriptor.
type PreopenType uint8

const (
	PreopenDir PreopenType = iota
)

func enumString[E ~uint8 | ~uint32](names []string, e E) string {
	if int(e) < len(names) {
		return names[int(e)]
	}
	return fmt.Sprintf("%d", e)
}

// Rights is the set of operations permitted on a file descriptor.
type Rights uint64

const (
	FDDataSyncRight Rights = 1 << iota
	FDReadRight
	FDSeekRight
	FDStatSetFlagsRight
	FDSyncRight
	FDTellRight
	FDWriteRight
	FDAdviseRight
	FDAllocateRight
	PathCreateDirectoryRight
	PathCreateFileRight
	PathLinkSourceRight
	PathLinkTargetRight
	PathOpenRight
	FDReadDirRight
	PathReadLinkRight
	PathRenameSourceRight
	PathRenameTargetRight
	PathFileStatGetRight
	PathFileStatSetSizeRight
	PathFileStatSetTimesRight
	FDFileStatGetRight
	FDFileStatSetSizeRight
	FDFileStatSetTimesRight
	PathSymlinkRight
	PathRemoveDirectoryRight
	PathUnlinkFileRight
	PollFDReadWriteRight
	SockShutdownRight

	// AllRights is the set of all the rights.
	AllRights Rights = (1 << iota) - 1
)

var rightsNames = [...]string{
	"FD_DATASYNC",
	"FD_READ",
	"FD_SEEK",
	"FD_FDSTAT_SET_FLAGS",
	"FD_SYNC",
	"FD_TELL",
	"FD_WRITE",
	"FD_ADVISE",
	"FD_ALLOCATE",
	"PATH_CREATE_DIRECTORY",
	"PATH_CREATE_FILE",
	"PATH_LINK_SOURCE",
	"PATH_LINK_TARGET",
	"PATH_OPEN",
	"FD_READDIR",
	"PATH_READLINK",
	"PATH_RENAME_SOURCE",
	"PATH_RENAME_TARGET",
	"PATH_FILESTAT_GET",
	"PATH_FILESTAT_SET_SIZE",
	"PATH_FILESTAT_SET_TIMES",
	"FD_FILESTAT_GET",
	"FD_FILESTAT_SET_SIZE",
	"FD_FILESTAT_SET_TIMES",
	"PATH_SYMLINK",
	"PATH_REMOVE_DIRECTORY",
	"PATH_UNLINK_FILE",
	"POLL_FD_READWRITE",
	"SOCK_SHUTDOWN",
}

// Has returns true if r contains all the rights of other.
func (r Rights) Has(other Rights) bool { return r&other == other }

// HasAny returns true if r contains at least one of the rights of other.
func (r Rights) HasAny(other Rights) bool { return r&other != 0 }

func (r Rights) String() string { return flagsString(rightsNames[:], uint64(r)) }

func RightsFromNative(w wire.U64) (Rights, error) {
	return flagsFromNative[Rights]("rights", w, uint64(AllRights))
}

func (r Rights) ToNative() wire.U64 { return wire.U64(r) }

// FDFlags are the flags of a file descriptor.
type FDFlags uint16

const (
	Append FDFlags = 1 << iota
	DSync
	NonBlock
	RSync
	Sync
	fdflagsMask = (1 << iota) - 1
)

var fdflagsNames = [...]string{"APPEND", "DSYNC", "NONBLOCK", "RSYNC", "SYNC"}

func (f FDFlags) Has(other FDFlags) bool { return f&other == other }

func (f FDFlags) String() string { return flagsString(fdflagsNames[:], uint64(f)) }

func FDFlagsFromNative(w wire.U16) (FDFlags, error) {
	return flagsFromNative[FDFlags]("fdflags", w, fdflagsMask)
}

func (f FDFlags) ToNative() wire.U16 { return wire.U16(f) }

// FSTFlags select the timestamps updated by the set_times functions.
type FSTFlags uint16

const (
	AccessTime FSTFlags = 1 << iota
	AccessTimeNow
	ModifyTime
	ModifyTimeNow
	fstflagsMask = (1 << iota) - 1
)

var fstflagsNames = [...]string{"ATIM", "ATIM_NOW", "MTIM", "MTIM_NOW"}

func (f FSTFlags) Has(other FSTFlags) bool { return f&other == other }

func (f FSTFlags) String() string { return flagsString(fstflagsNames[:], uint64(f)) }

func FSTFlagsFromNative(w wire.U16) (FSTFlags, error) {
	return flagsFromNative[FSTFlags]("fstflags", w, fstflagsMask)
}

func (f FSTFlags) ToNative() wire.U16 { return wire.U16(f) }

// LookupFlags control the resolution of paths.
type LookupFlags uint32

const (
	SymlinkFollow LookupFlags = 1 << iota
	lookupflagsMask           = (1 << iota) - 1
)

func (f LookupFlags) Has(other LookupFlags) bool { return f&other == other }

func LookupFlagsFromNative(w wire.U32) (LookupFlags, error) {
	return flagsFromNative[LookupFlags]("lookupflags", w, lookupflagsMask)
}

func (f LookupFlags) ToNative() wire.U32 { return wire.U32(f) }

// OFlags are the flags used when opening files.
type OFlags uint16

const (
	OpenCreate OFlags = 1 << iota
	OpenDirectory
	OpenExclusive
	OpenTruncate
	oflagsMask = (1 << iota) - 1
)

var oflagsNames = [...]string{"CREAT", "DIRECTORY", "EXCL", "TRUNC"}

func (f OFlags) Has(other OFlags) bool { return f&other == other }

func (f OFlags) String() string { return flagsString(oflagsNames[:], uint64(f)) }

func OFlagsFromNative(w wire.U16) (OFlags, error) {
	return flagsFromNative[OFlags]("oflags", w, oflagsMask)
}

func (f OFlags) ToNative() wire.U16 { return wire.U16(f) }

// EventRWFlags are the flags of fd_read and fd_write events.
type EventRWFlags uint16

const (
	Hangup EventRWFlags = 1 << iota
	eventrwflagsMask    = (1 << iota) - 1
)

func EventRWFlagsFromNative(w wire.U16) (EventRWFlags, error) {
	return flagsFromNative[EventRWFlags]("eventrwflags", w, eventrwflagsMask)
}

func (f EventRWFlags) ToNative() wire.U16 { return wire.U16(f) }

// SubClockFlags are the flags of clock subscriptions.
type SubClockFlags uint16

const (
	Abstime           SubClockFlags = 1 << iota
	subclockflagsMask               = (1 << iota) - 1
)

func (f SubClockFlags) Has(other SubClockFlags) bool { return f&other == other }

func SubClockFlagsFromNative(w wire.U16) (SubClockFlags, error) {
	return flagsFromNative[SubClockFlags]("subclockflags", w, subclockflagsMask)
}

func (f SubClockFlags) ToNative() wire.U16 { return wire.U16(f) }

// RIFlags are the flags of sock_recv.
type RIFlags uint16

const (
	RecvPeek RIFlags = 1 << iota
	RecvWaitAll
	riflagsMask = (1 << iota) - 1
)

func (f RIFlags) Has(other RIFlags) bool { return f&other == other }

func RIFlagsFromNative(w wire.U16) (RIFlags, error) {
	return flagsFromNative[RIFlags]("riflags", w, riflagsMask)
}

func (f RIFlags) ToNative() wire.U16 { return wire.U16(f) }

// ROFlags are the flags returned by sock_recv.
type ROFlags uint16

const (
	RecvDataTruncated ROFlags = 1 << iota
	roflagsMask               = (1 << iota) - 1
)

func ROFlagsFromNative(w wire.U16) (ROFlags, error) {
	return flagsFromNative[ROFlags]("roflags", w, roflagsMask)
}

func (f ROFlags) ToNative() wire.U16 { return wire.U16(f) }

// SIFlags are the flags of sock_send; no flags are defined.
type SIFlags uint16

func SIFlagsFromNative(w wire.U16) (SIFlags, error) {
	return flagsFromNative[SIFlags]("siflags", w, 0)
}

func (f SIFlags) ToNative() wire.U16 { return wire.U16(f) }

// SDFlags select the directions shut down by sock_shutdown.
type SDFlags uint8

const (
	ShutdownRD SDFlags = 1 << iota
	ShutdownWR
	sdflagsMask = (1 << iota) - 1
)

func (f SDFlags) Has(other SDFlags) bool { return f&other == other }

func SDFlagsFromNative(w wire.U8) (SDFlags, error) {
	return flagsFromNative[SDFlags]("sdflags", w, sdflagsMask)
}

func (f SDFlags) ToNative() wire.U8 { return wire.U8(f) }

func flagsString(names []string, flags uint64) string {
	if flags == 0 {
		return "0"
	}
	var s strings.Builder
	for i, name := range names {
		if flags&(1<<i) != 0 {
			if s.Len() > 0 {
				s.WriteByte('|')
			}
			s.WriteString(name)
			flags &^= 1 << i
		}
	}
	if flags != 0 {
		if s.Len() > 0 {
			s.WriteByte('|')
		}
		fmt.Fprintf(&s, "%#x", flags)
	}
	return s.String()
}
