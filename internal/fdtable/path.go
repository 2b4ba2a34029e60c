package fdtable

import (
	"github.com/stealthrocket/wasihost/internal/wasi"
)

func (d *Descriptor[S]) directory(required wasi.Rights) (*Directory, wasi.Errno) {
	if errno := d.check(required); errno != wasi.ESUCCESS {
		return nil, errno
	}
	dir, ok := d.resource.(*Directory)
	if !ok {
		return nil, wasi.ENOTDIR
	}
	return dir, wasi.ESUCCESS
}

// readOnly checks the rights and the path of an operation which would modify
// the directory. Directories are read-only, so when the checks pass the
// operation fails with ENOTSUP.
func (d *Descriptor[S]) readOnly(required wasi.Rights, paths ...S) wasi.Errno {
	dir, errno := d.directory(required)
	if errno != wasi.ESUCCESS {
		return errno
	}
	for _, p := range paths {
		if _, errno := dir.resolve(string(p.Bytes())); errno != wasi.ESUCCESS {
			return errno
		}
	}
	return wasi.ENOTSUP
}

func (d *Descriptor[S]) PathCreateDirectory(path S) wasi.Errno {
	return d.readOnly(wasi.PathCreateDirectoryRight, path)
}

func (d *Descriptor[S]) PathFileStat(flags wasi.LookupFlags, path S) (wasi.FileStat, wasi.Errno) {
	dir, errno := d.directory(wasi.PathFileStatGetRight)
	if errno != wasi.ESUCCESS {
		return wasi.FileStat{}, errno
	}
	return dir.statPath(string(path.Bytes()))
}

func (d *Descriptor[S]) PathFileStatSetTimes(flags wasi.LookupFlags, path S, atim, mtim wasi.Timestamp, fstFlags wasi.FSTFlags) wasi.Errno {
	if errno := checkTimeFlags(fstFlags); errno != wasi.ESUCCESS {
		return errno
	}
	return d.readOnly(wasi.PathFileStatSetTimesRight, path)
}

// PathLink checks PATH_LINK_SOURCE on d and PATH_LINK_TARGET on newDir.
func (d *Descriptor[S]) PathLink(flags wasi.LookupFlags, oldPath S, newDir *Descriptor[S], newPath S) wasi.Errno {
	if errno := d.checkPathSource(wasi.PathLinkSourceRight, oldPath); errno != wasi.ESUCCESS {
		return errno
	}
	return newDir.readOnly(wasi.PathLinkTargetRight, newPath)
}

// Open opens path relative to the directory of d and returns a descriptor
// for the new resource.
//
// The requested rights must be included in the inheriting rights of d, the
// new descriptor is never granted rights outside of them.
func (d *Descriptor[S]) Open(flags wasi.LookupFlags, path S, oflags wasi.OFlags, rights Rights, fdflags wasi.FDFlags) (*Descriptor[S], wasi.Errno) {
	current := d.Rights()
	required, dsync := openRights(oflags, fdflags)
	if errno := checkRights(current.Base, required); errno != wasi.ESUCCESS {
		return nil, errno
	}
	if dsync && !current.Base.HasAny(wasi.FDDataSyncRight|wasi.FDSyncRight) {
		return nil, wasi.ENOTCAPABLE
	}
	if errno := checkRights(current.Inheriting, rights.Base); errno != wasi.ESUCCESS {
		return nil, errno
	}
	if errno := checkRights(current.Inheriting, rights.Inheriting); errno != wasi.ESUCCESS {
		return nil, errno
	}
	dir, ok := d.resource.(*Directory)
	if !ok {
		return nil, wasi.ENOTDIR
	}
	r, errno := dir.open(string(path.Bytes()), oflags)
	if errno != wasi.ESUCCESS {
		return nil, errno
	}
	return NewDescriptor[S](r, rights, fdflags), wasi.ESUCCESS
}

// PathReadLink copies the target of the symbolic link at path to buf,
// truncated to the length of buf.
func (d *Descriptor[S]) PathReadLink(path S, buf []byte) (wasi.Size, wasi.Errno) {
	dir, errno := d.directory(wasi.PathReadLinkRight)
	if errno != wasi.ESUCCESS {
		return 0, errno
	}
	target, errno := dir.readLink(string(path.Bytes()))
	if errno != wasi.ESUCCESS {
		return 0, errno
	}
	return wasi.Size(copy(buf, target)), wasi.ESUCCESS
}

func (d *Descriptor[S]) PathRemoveDirectory(path S) wasi.Errno {
	return d.readOnly(wasi.PathRemoveDirectoryRight, path)
}

// PathRename checks PATH_RENAME_SOURCE on d and PATH_RENAME_TARGET on newDir.
func (d *Descriptor[S]) PathRename(oldPath S, newDir *Descriptor[S], newPath S) wasi.Errno {
	if errno := d.checkPathSource(wasi.PathRenameSourceRight, oldPath); errno != wasi.ESUCCESS {
		return errno
	}
	return newDir.readOnly(wasi.PathRenameTargetRight, newPath)
}

func (d *Descriptor[S]) checkPathSource(required wasi.Rights, path S) wasi.Errno {
	if errno := d.readOnly(required, path); errno != wasi.ENOTSUP {
		return errno
	}
	return wasi.ESUCCESS
}

func (d *Descriptor[S]) PathSymlink(oldPath S, newPath S) wasi.Errno {
	return d.readOnly(wasi.PathSymlinkRight, newPath)
}

func (d *Descriptor[S]) PathUnlinkFile(path S) wasi.Errno {
	return d.readOnly(wasi.PathUnlinkFileRight, path)
}
