package wasi

import (
	"github.com/stealthrocket/wasihost/internal/wire"
)

// FDStat is the state of a file descriptor.
type FDStat struct {
	FileType         FileType
	Flags            FDFlags
	RightsBase       Rights
	RightsInheriting Rights
}

func FDStatFromNative(w wire.FDStat) (s FDStat, err error) {
	if s.FileType, err = FileTypeFromNative(w.FileType); err != nil {
		return s, err
	}
	if s.Flags, err = FDFlagsFromNative(w.Flags); err != nil {
		return s, err
	}
	if s.RightsBase, err = RightsFromNative(w.RightsBase); err != nil {
		return s, err
	}
	s.RightsInheriting, err = RightsFromNative(w.RightsInheriting)
	return s, err
}

func (s FDStat) ToNative() wire.FDStat {
	return wire.FDStat{
		FileType:         s.FileType.ToNative(),
		Flags:            s.Flags.ToNative(),
		RightsBase:       s.RightsBase.ToNative(),
		RightsInheriting: s.RightsInheriting.ToNative(),
	}
}

// FileStat are the attributes of a file.
type FileStat struct {
	Device     Device
	Inode      Inode
	FileType   FileType
	NLink      LinkCount
	Size       FileSize
	AccessTime Timestamp
	ModifyTime Timestamp
	ChangeTime Timestamp
}

func FileStatFromNative(w wire.FileStat) (s FileStat, err error) {
	s.FileType, err = FileTypeFromNative(w.FileType)
	s.Device = Device(w.Device)
	s.Inode = Inode(w.Inode)
	s.NLink = LinkCount(w.NLink)
	s.Size = FileSize(w.Size)
	s.AccessTime = Timestamp(w.AccessTime)
	s.ModifyTime = Timestamp(w.ModifyTime)
	s.ChangeTime = Timestamp(w.ChangeTime)
	return s, err
}

func (s FileStat) ToNative() wire.FileStat {
	return wire.FileStat{
		Device:     wire.U64(s.Device),
		Inode:      wire.U64(s.Inode),
		FileType:   s.FileType.ToNative(),
		NLink:      wire.U64(s.NLink),
		Size:       wire.U64(s.Size),
		AccessTime: wire.U64(s.AccessTime),
		ModifyTime: wire.U64(s.ModifyTime),
		ChangeTime: wire.U64(s.ChangeTime),
	}
}

// Dirent is the header of a directory entry.
type Dirent struct {
	Next    DirCookie
	Inode   Inode
	NameLen uint32
	Type    FileType
}

func DirentFromNative(w wire.Dirent) (d Dirent, err error) {
	d.Type, err = FileTypeFromNative(w.Type)
	d.Next = DirCookie(w.Next)
	d.Inode = Inode(w.Inode)
	d.NameLen = uint32(w.NameLen)
	return d, err
}

func (d Dirent) ToNative() wire.Dirent {
	return wire.Dirent{
		Next:    wire.U64(d.Next),
		Inode:   wire.U64(d.Inode),
		NameLen: wire.U32(d.NameLen),
		Type:    d.Type.ToNative(),
	}
}

// DirEntry is an entry of a directory. Next is the cookie of the entry which
// follows it.
type DirEntry[S String[S]] struct {
	Next  DirCookie
	Inode Inode
	Type  FileType
	Name  S
}

// Dirent returns the header written in front of the entry name.
func (d DirEntry[S]) Dirent() Dirent {
	return Dirent{
		Next:    d.Next,
		Inode:   d.Inode,
		NameLen: uint32(len(d.Name.Bytes())),
		Type:    d.Type,
	}
}

// Prestat describes a pre-opened file descriptor. PrestatDir is the only
// implementation.
type Prestat interface {
	Type() PreopenType
	ToNative() wire.Prestat
}

// PrestatDir is a pre-opened directory.
type PrestatDir struct {
	NameLen uint32
}

func (PrestatDir) Type() PreopenType { return PreopenDir }

func (p PrestatDir) ToNative() wire.Prestat {
	return wire.Prestat{
		Tag: wire.PrestatTagDir,
		Dir: wire.PrestatDir{NameLen: wire.U32(p.NameLen)},
	}
}

func PrestatFromNative(w wire.Prestat) (Prestat, error) {
	switch w.Tag {
	case wire.PrestatTagDir:
		return PrestatDir{NameLen: uint32(w.Dir.NameLen)}, nil
	default:
		return nil, &ConversionError{Type: "prestat tag", Value: uint64(w.Tag)}
	}
}

// Subscription is a subscription to an event of poll_oneoff.
type Subscription struct {
	UserData UserData
	Event    SubscriptionEvent
}

// SubscriptionEvent is the payload of a subscription: one of
// SubscriptionClock, SubscriptionFDRead, or SubscriptionFDWrite.
type SubscriptionEvent interface {
	EventType() EventType
	toNative() wire.SubscriptionU
}

// SubscriptionClock is a subscription to a timeout.
type SubscriptionClock struct {
	ID        ClockID
	Timeout   Timestamp
	Precision Timestamp
	Flags     SubClockFlags
}

func (SubscriptionClock) EventType() EventType { return ClockEvent }

func (s SubscriptionClock) toNative() wire.SubscriptionU {
	return wire.SubscriptionU{
		Tag: wire.EventTypeClock,
		Clock: wire.SubscriptionClock{
			ID:        s.ID.ToNative(),
			Timeout:   wire.U64(s.Timeout),
			Precision: wire.U64(s.Precision),
			Flags:     s.Flags.ToNative(),
		},
	}
}

// SubscriptionFDRead is a subscription to a file descriptor becoming
// readable.
type SubscriptionFDRead struct {
	FD FD
}

func (SubscriptionFDRead) EventType() EventType { return FDReadEvent }

func (s SubscriptionFDRead) toNative() wire.SubscriptionU {
	return wire.SubscriptionU{
		Tag:         wire.EventTypeFDRead,
		FDReadWrite: wire.SubscriptionFDReadWrite{FD: wire.U32(s.FD)},
	}
}

// SubscriptionFDWrite is a subscription to a file descriptor becoming
// writable.
type SubscriptionFDWrite struct {
	FD FD
}

func (SubscriptionFDWrite) EventType() EventType { return FDWriteEvent }

func (s SubscriptionFDWrite) toNative() wire.SubscriptionU {
	return wire.SubscriptionU{
		Tag:         wire.EventTypeFDWrite,
		FDReadWrite: wire.SubscriptionFDReadWrite{FD: wire.U32(s.FD)},
	}
}

func SubscriptionFromNative(w wire.Subscription) (Subscription, error) {
	s := Subscription{UserData: UserData(w.UserData)}
	switch w.U.Tag {
	case wire.EventTypeClock:
		id, err := ClockIDFromNative(w.U.Clock.ID)
		if err != nil {
			return s, err
		}
		flags, err := SubClockFlagsFromNative(w.U.Clock.Flags)
		if err != nil {
			return s, err
		}
		s.Event = SubscriptionClock{
			ID:        id,
			Timeout:   Timestamp(w.U.Clock.Timeout),
			Precision: Timestamp(w.U.Clock.Precision),
			Flags:     flags,
		}
	case wire.EventTypeFDRead:
		s.Event = SubscriptionFDRead{FD: FD(w.U.FDReadWrite.FD)}
	case wire.EventTypeFDWrite:
		s.Event = SubscriptionFDWrite{FD: FD(w.U.FDReadWrite.FD)}
	default:
		return s, &ConversionError{Type: "subscription tag", Value: uint64(w.U.Tag)}
	}
	return s, nil
}

func (s Subscription) ToNative() wire.Subscription {
	return wire.Subscription{
		UserData: wire.U64(s.UserData),
		U:        s.Event.toNative(),
	}
}

// EventFDReadWrite is the state of the file descriptor of fd_read and fd_write
// events.
type EventFDReadWrite struct {
	NBytes FileSize
	Flags  EventRWFlags
}

// Event is an event produced by poll_oneoff.
type Event struct {
	UserData    UserData
	Error       Errno
	Type        EventType
	FDReadWrite EventFDReadWrite
}

func EventFromNative(w wire.Event) (e Event, err error) {
	e.UserData = UserData(w.UserData)
	if e.Error, err = ErrnoFromNative(w.Error); err != nil {
		return e, err
	}
	if e.Type, err = EventTypeFromNative(w.Type); err != nil {
		return e, err
	}
	e.FDReadWrite.NBytes = FileSize(w.FDReadWrite.NBytes)
	e.FDReadWrite.Flags, err = EventRWFlagsFromNative(w.FDReadWrite.Flags)
	return e, err
}

func (e Event) ToNative() wire.Event {
	return wire.Event{
		UserData: wire.U64(e.UserData),
		Error:    e.Error.ToNative(),
		Type:     e.Type.ToNative(),
		FDReadWrite: wire.EventFDReadWrite{
			NBytes: wire.U64(e.FDReadWrite.NBytes),
			Flags:  e.FDReadWrite.Flags.ToNative(),
		},
	}
}
