package fdtable

import (
	"sync/atomic"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

// Rights is the pair of rights sets attached to a descriptor.
type Rights struct {
	Base       wasi.Rights
	Inheriting wasi.Rights
}

const (
	// ReadOnlyFileRights are the rights of files opened from directories.
	ReadOnlyFileRights = wasi.FDReadRight |
		wasi.FDSeekRight |
		wasi.FDTellRight |
		wasi.FDAdviseRight |
		wasi.FDFileStatGetRight |
		wasi.FDStatSetFlagsRight |
		wasi.FDSyncRight |
		wasi.FDDataSyncRight |
		wasi.PollFDReadWriteRight

	// DirectoryRights are the rights of directories.
	DirectoryRights = wasi.PathOpenRight |
		wasi.FDReadDirRight |
		wasi.FDFileStatGetRight |
		wasi.FDStatSetFlagsRight |
		wasi.PathFileStatGetRight |
		wasi.PathReadLinkRight |
		wasi.PathCreateDirectoryRight |
		wasi.PathCreateFileRight |
		wasi.PathLinkSourceRight |
		wasi.PathLinkTargetRight |
		wasi.PathRenameSourceRight |
		wasi.PathRenameTargetRight |
		wasi.PathSymlinkRight |
		wasi.PathRemoveDirectoryRight |
		wasi.PathUnlinkFileRight |
		wasi.PathFileStatSetSizeRight |
		wasi.PathFileStatSetTimesRight

	// SocketRights are the rights of connected sockets.
	SocketRights = wasi.FDReadRight |
		wasi.FDWriteRight |
		wasi.FDFileStatGetRight |
		wasi.FDStatSetFlagsRight |
		wasi.PollFDReadWriteRight |
		wasi.SockShutdownRight
)

// Descriptor is an entry of the descriptor table: a resource and the
// capabilities that the guest holds on it.
//
// Descriptors are reference counted. The table holds one reference for each
// slot the descriptor occupies, and operations in flight hold one until they
// release it. The resource is closed when the last reference is released.
type Descriptor[S wasi.String[S]] struct {
	resource Resource
	rights   atomic.Pointer[Rights]
	flags    atomic.Uint32
	refs     atomic.Int32
	// Name of the pre-opened directory, valid if preopen is true.
	name    S
	preopen bool
}

// NewDescriptor creates a descriptor for r with the given rights and flags.
func NewDescriptor[S wasi.String[S]](r Resource, rights Rights, flags wasi.FDFlags) *Descriptor[S] {
	d := &Descriptor[S]{resource: r}
	d.rights.Store(&rights)
	d.flags.Store(uint32(flags))
	d.refs.Store(1)
	return d
}

// NewPreopen creates a descriptor for a pre-opened directory which guests
// discover under the given name.
func NewPreopen[S wasi.String[S]](dir *Directory, rights Rights, name S) *Descriptor[S] {
	d := NewDescriptor[S](dir, rights, 0)
	d.name, d.preopen = name, true
	return d
}

// Resource returns the resource that d refers to.
func (d *Descriptor[S]) Resource() Resource { return d.resource }

// Rights returns the current rights of d.
func (d *Descriptor[S]) Rights() Rights { return *d.rights.Load() }

// Flags returns the current flags of d.
func (d *Descriptor[S]) Flags() wasi.FDFlags { return wasi.FDFlags(d.flags.Load()) }

func (d *Descriptor[S]) acquire() { d.refs.Add(1) }

// Release drops a reference to d, closing the resource when it was the last
// one.
func (d *Descriptor[S]) Release() {
	if d.refs.Add(-1) == 0 {
		d.resource.Close()
	}
}

// SetRights narrows the rights of d. Requesting rights that d does not hold
// fails with ENOTCAPABLE and leaves d unchanged.
//
// The pair of rights sets is replaced with a single compare-and-swap, so
// concurrent callers never observe the base rights of one update mixed with
// the inheriting rights of another.
func (d *Descriptor[S]) SetRights(base, inheriting wasi.Rights) wasi.Errno {
	next := &Rights{Base: base, Inheriting: inheriting}
	for {
		prev := d.rights.Load()
		if !prev.Base.Has(base) || !prev.Inheriting.Has(inheriting) {
			return wasi.ENOTCAPABLE
		}
		if d.rights.CompareAndSwap(prev, next) {
			return wasi.ESUCCESS
		}
	}
}

// SetFlags replaces the flags of d.
func (d *Descriptor[S]) SetFlags(flags wasi.FDFlags) wasi.Errno {
	if errno := d.check(wasi.FDStatSetFlagsRight); errno != wasi.ESUCCESS {
		return errno
	}
	d.flags.Store(uint32(flags))
	return wasi.ESUCCESS
}

// Stat returns the descriptor attributes. It requires no rights.
func (d *Descriptor[S]) Stat() wasi.FDStat {
	rights := d.Rights()
	return wasi.FDStat{
		FileType:         d.resource.FileType(),
		Flags:            d.Flags(),
		RightsBase:       rights.Base,
		RightsInheriting: rights.Inheriting,
	}
}

func (d *Descriptor[S]) check(required wasi.Rights) wasi.Errno {
	return checkRights(d.rights.Load().Base, required)
}

// checkEither passes if d holds at least one of the rights.
func (d *Descriptor[S]) checkEither(a, b wasi.Rights) wasi.Errno {
	base := d.rights.Load().Base
	if base.Has(a) || base.Has(b) {
		return wasi.ESUCCESS
	}
	return wasi.ENOTCAPABLE
}

func checkRights(actual, required wasi.Rights) wasi.Errno {
	if !actual.Has(required) {
		return wasi.ENOTCAPABLE
	}
	return wasi.ESUCCESS
}

// openRights returns the rights required on a directory to open a file with
// the given flags.
func openRights(oflags wasi.OFlags, fdflags wasi.FDFlags) (required wasi.Rights, dsync bool) {
	required = wasi.PathOpenRight
	if oflags.Has(wasi.OpenCreate) {
		required |= wasi.PathCreateFileRight
	}
	if oflags.Has(wasi.OpenTruncate) {
		required |= wasi.PathFileStatSetSizeRight
	}
	if fdflags.Has(wasi.RSync) || fdflags.Has(wasi.Sync) {
		required |= wasi.FDSyncRight
	}
	return required, fdflags.Has(wasi.DSync)
}
