package wire

import "fmt"

// FDStat is the wire representation of the fdstat structure.
type FDStat struct {
	FileType         U8
	Flags            U16
	RightsBase       U64
	RightsInheriting U64
}

var fdstat = structOf(layout8, layout16, layout64, layout64)

func (FDStat) Layout() Layout { return fdstat.Layout }

func (FDStat) Decode(b []byte) (s FDStat) {
	check(fdstat.Layout, b)
	s.FileType = s.FileType.Decode(fdstat.field(b, 0))
	s.Flags = s.Flags.Decode(fdstat.field(b, 1))
	s.RightsBase = s.RightsBase.Decode(fdstat.field(b, 2))
	s.RightsInheriting = s.RightsInheriting.Decode(fdstat.field(b, 3))
	return s
}

func (s FDStat) Encode(b []byte) {
	check(fdstat.Layout, b)
	clear(b)
	s.FileType.Encode(fdstat.field(b, 0))
	s.Flags.Encode(fdstat.field(b, 1))
	s.RightsBase.Encode(fdstat.field(b, 2))
	s.RightsInheriting.Encode(fdstat.field(b, 3))
}

// FileStat is the wire representation of the filestat structure.
type FileStat struct {
	Device     U64
	Inode      U64
	FileType   U8
	NLink      U64
	Size       U64
	AccessTime U64
	ModifyTime U64
	ChangeTime U64
}

var filestat = structOf(layout64, layout64, layout8, layout64, layout64, layout64, layout64, layout64)

func (FileStat) Layout() Layout { return filestat.Layout }

func (FileStat) Decode(b []byte) (s FileStat) {
	check(filestat.Layout, b)
	s.Device = s.Device.Decode(filestat.field(b, 0))
	s.Inode = s.Inode.Decode(filestat.field(b, 1))
	s.FileType = s.FileType.Decode(filestat.field(b, 2))
	s.NLink = s.NLink.Decode(filestat.field(b, 3))
	s.Size = s.Size.Decode(filestat.field(b, 4))
	s.AccessTime = s.AccessTime.Decode(filestat.field(b, 5))
	s.ModifyTime = s.ModifyTime.Decode(filestat.field(b, 6))
	s.ChangeTime = s.ChangeTime.Decode(filestat.field(b, 7))
	return s
}

func (s FileStat) Encode(b []byte) {
	check(filestat.Layout, b)
	clear(b)
	s.Device.Encode(filestat.field(b, 0))
	s.Inode.Encode(filestat.field(b, 1))
	s.FileType.Encode(filestat.field(b, 2))
	s.NLink.Encode(filestat.field(b, 3))
	s.Size.Encode(filestat.field(b, 4))
	s.AccessTime.Encode(filestat.field(b, 5))
	s.ModifyTime.Encode(filestat.field(b, 6))
	s.ChangeTime.Encode(filestat.field(b, 7))
}

// Dirent is the header written before each name in the fd_readdir output.
type Dirent struct {
	Next    U64
	Inode   U64
	NameLen U32
	Type    U8
}

var dirent = structOf(layout64, layout64, layout32, layout8)

func (Dirent) Layout() Layout { return dirent.Layout }

func (Dirent) Decode(b []byte) (d Dirent) {
	check(dirent.Layout, b)
	d.Next = d.Next.Decode(dirent.field(b, 0))
	d.Inode = d.Inode.Decode(dirent.field(b, 1))
	d.NameLen = d.NameLen.Decode(dirent.field(b, 2))
	d.Type = d.Type.Decode(dirent.field(b, 3))
	return d
}

func (d Dirent) Encode(b []byte) {
	check(dirent.Layout, b)
	clear(b)
	d.Next.Encode(dirent.field(b, 0))
	d.Inode.Encode(dirent.field(b, 1))
	d.NameLen.Encode(dirent.field(b, 2))
	d.Type.Encode(dirent.field(b, 3))
}

// IOVec is a buffer of the guest memory used for vectored I/O. The same layout
// is used for ciovec.
type IOVec struct {
	Buf    Ptr[U8]
	BufLen U32
}

var iovec = structOf(layout32, layout32)

func (IOVec) Layout() Layout { return iovec.Layout }

func (IOVec) Decode(b []byte) (v IOVec) {
	check(iovec.Layout, b)
	v.Buf = v.Buf.Decode(iovec.field(b, 0))
	v.BufLen = v.BufLen.Decode(iovec.field(b, 1))
	return v
}

func (v IOVec) Encode(b []byte) {
	check(iovec.Layout, b)
	v.Buf.Encode(iovec.field(b, 0))
	v.BufLen.Encode(iovec.field(b, 1))
}

// PrestatDir is the payload of a prestat of type dir.
type PrestatDir struct {
	NameLen U32
}

func (PrestatDir) Layout() Layout { return layout32 }

func (PrestatDir) Decode(b []byte) PrestatDir {
	return PrestatDir{NameLen: U32(0).Decode(b)}
}

func (p PrestatDir) Encode(b []byte) {
	p.NameLen.Encode(b)
}

// Prestat is the tagged union describing a pre-opened descriptor.
//
// Decoding a prestat with an unknown tag retains the tag and leaves the
// payload zero; such values report false from Known and cannot be encoded.
type Prestat struct {
	Tag U8
	Dir PrestatDir
}

const PrestatTagDir = 0

var prestat = unionOf(layout8, PrestatDir{}.Layout())

func (Prestat) Layout() Layout { return prestat.Layout }

func (p Prestat) Known() bool { return prestat.known(uint64(p.Tag)) }

func (Prestat) Decode(b []byte) (p Prestat) {
	check(prestat.Layout, b)
	p.Tag = p.Tag.Decode(prestat.header(b))
	switch p.Tag {
	case PrestatTagDir:
		p.Dir = p.Dir.Decode(prestat.payload(b, PrestatTagDir))
	}
	return p
}

func (p Prestat) Encode(b []byte) {
	check(prestat.Layout, b)
	if !p.Known() {
		panic(fmt.Sprintf("wire: cannot encode prestat with unknown tag %d", p.Tag))
	}
	clear(b)
	p.Tag.Encode(prestat.header(b))
	switch p.Tag {
	case PrestatTagDir:
		p.Dir.Encode(prestat.payload(b, PrestatTagDir))
	}
}

// SubscriptionClock is the payload of a clock subscription.
type SubscriptionClock struct {
	ID        U32
	Timeout   U64
	Precision U64
	Flags     U16
}

var subscriptionClock = structOf(layout32, layout64, layout64, layout16)

func (SubscriptionClock) Layout() Layout { return subscriptionClock.Layout }

func (SubscriptionClock) Decode(b []byte) (s SubscriptionClock) {
	check(subscriptionClock.Layout, b)
	s.ID = s.ID.Decode(subscriptionClock.field(b, 0))
	s.Timeout = s.Timeout.Decode(subscriptionClock.field(b, 1))
	s.Precision = s.Precision.Decode(subscriptionClock.field(b, 2))
	s.Flags = s.Flags.Decode(subscriptionClock.field(b, 3))
	return s
}

func (s SubscriptionClock) Encode(b []byte) {
	check(subscriptionClock.Layout, b)
	clear(b)
	s.ID.Encode(subscriptionClock.field(b, 0))
	s.Timeout.Encode(subscriptionClock.field(b, 1))
	s.Precision.Encode(subscriptionClock.field(b, 2))
	s.Flags.Encode(subscriptionClock.field(b, 3))
}

// SubscriptionFDReadWrite is the payload of fd_read and fd_write
// subscriptions.
type SubscriptionFDReadWrite struct {
	FD U32
}

func (SubscriptionFDReadWrite) Layout() Layout { return layout32 }

func (SubscriptionFDReadWrite) Decode(b []byte) SubscriptionFDReadWrite {
	return SubscriptionFDReadWrite{FD: U32(0).Decode(b)}
}

func (s SubscriptionFDReadWrite) Encode(b []byte) {
	s.FD.Encode(b)
}

const (
	EventTypeClock   = 0
	EventTypeFDRead  = 1
	EventTypeFDWrite = 2
)

// SubscriptionU is the tagged union of subscription payloads; the tag is the
// event type.
type SubscriptionU struct {
	Tag         U8
	Clock       SubscriptionClock
	FDReadWrite SubscriptionFDReadWrite
}

var subscriptionU = unionOf(layout8,
	subscriptionClock.Layout,
	SubscriptionFDReadWrite{}.Layout(),
	SubscriptionFDReadWrite{}.Layout(),
)

func (SubscriptionU) Layout() Layout { return subscriptionU.Layout }

func (u SubscriptionU) Known() bool { return subscriptionU.known(uint64(u.Tag)) }

func (SubscriptionU) Decode(b []byte) (u SubscriptionU) {
	check(subscriptionU.Layout, b)
	u.Tag = u.Tag.Decode(subscriptionU.header(b))
	switch u.Tag {
	case EventTypeClock:
		u.Clock = u.Clock.Decode(subscriptionU.payload(b, EventTypeClock))
	case EventTypeFDRead, EventTypeFDWrite:
		u.FDReadWrite = u.FDReadWrite.Decode(subscriptionU.payload(b, uint64(u.Tag)))
	}
	return u
}

func (u SubscriptionU) Encode(b []byte) {
	check(subscriptionU.Layout, b)
	if !u.Known() {
		panic(fmt.Sprintf("wire: cannot encode subscription with unknown tag %d", u.Tag))
	}
	clear(b)
	u.Tag.Encode(subscriptionU.header(b))
	switch u.Tag {
	case EventTypeClock:
		u.Clock.Encode(subscriptionU.payload(b, EventTypeClock))
	case EventTypeFDRead, EventTypeFDWrite:
		u.FDReadWrite.Encode(subscriptionU.payload(b, uint64(u.Tag)))
	}
}

// Subscription is a subscription to an event passed to poll_oneoff.
type Subscription struct {
	UserData U64
	U        SubscriptionU
}

var subscription = structOf(layout64, subscriptionU.Layout)

func (Subscription) Layout() Layout { return subscription.Layout }

func (Subscription) Decode(b []byte) (s Subscription) {
	check(subscription.Layout, b)
	s.UserData = s.UserData.Decode(subscription.field(b, 0))
	s.U = s.U.Decode(subscription.field(b, 1))
	return s
}

func (s Subscription) Encode(b []byte) {
	check(subscription.Layout, b)
	s.UserData.Encode(subscription.field(b, 0))
	s.U.Encode(subscription.field(b, 1))
}

// EventFDReadWrite is the state of a file descriptor reported in events.
type EventFDReadWrite struct {
	NBytes U64
	Flags  U16
}

var eventFDReadWrite = structOf(layout64, layout16)

func (EventFDReadWrite) Layout() Layout { return eventFDReadWrite.Layout }

func (EventFDReadWrite) Decode(b []byte) (e EventFDReadWrite) {
	check(eventFDReadWrite.Layout, b)
	e.NBytes = e.NBytes.Decode(eventFDReadWrite.field(b, 0))
	e.Flags = e.Flags.Decode(eventFDReadWrite.field(b, 1))
	return e
}

func (e EventFDReadWrite) Encode(b []byte) {
	check(eventFDReadWrite.Layout, b)
	clear(b)
	e.NBytes.Encode(eventFDReadWrite.field(b, 0))
	e.Flags.Encode(eventFDReadWrite.field(b, 1))
}

// Event is an event produced by poll_oneoff.
type Event struct {
	UserData    U64
	Error       U16
	Type        U8
	FDReadWrite EventFDReadWrite
}

var event = structOf(layout64, layout16, layout8, eventFDReadWrite.Layout)

func (Event) Layout() Layout { return event.Layout }

func (Event) Decode(b []byte) (e Event) {
	check(event.Layout, b)
	e.UserData = e.UserData.Decode(event.field(b, 0))
	e.Error = e.Error.Decode(event.field(b, 1))
	e.Type = e.Type.Decode(event.field(b, 2))
	e.FDReadWrite = e.FDReadWrite.Decode(event.field(b, 3))
	return e
}

func (e Event) Encode(b []byte) {
	check(event.Layout, b)
	clear(b)
	e.UserData.Encode(event.field(b, 0))
	e.Error.Encode(event.field(b, 1))
	e.Type.Encode(event.field(b, 2))
	e.FDReadWrite.Encode(event.field(b, 3))
}
