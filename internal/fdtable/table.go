// Package fdtable implements the descriptor table of a WASI process and the
// capability checks which guard every operation on its resources.
package fdtable

import (
	"math/rand"
	"sync"
	"time"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

// Table maps descriptor numbers to descriptors.
//
// The mutex only guards the structure of the table. Operations resolve a
// descriptor and acquire a reference to it while holding the lock, then run
// against that reference after the lock was released, so a blocking operation
// on a resource never delays operations on other descriptors.
type Table[S wasi.String[S]] struct {
	mutex sync.Mutex
	fds   map[wasi.FD]*Descriptor[S]
	rand  *rand.Rand
}

// NewTable creates an empty table. Descriptor numbers are drawn from src; a
// time-seeded source is used if src is nil.
func NewTable[S wasi.String[S]](src rand.Source) *Table[S] {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Table[S]{
		fds:  make(map[wasi.FD]*Descriptor[S]),
		rand: rand.New(src),
	}
}

// Insert places d at fd. It fails with EBADF if fd is already in use.
func (t *Table[S]) Insert(fd wasi.FD, d *Descriptor[S]) wasi.Errno {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, exists := t.fds[fd]; exists {
		return wasi.EBADF
	}
	t.fds[fd] = d
	return wasi.ESUCCESS
}

// Allocate places d at a vacant descriptor number chosen at random in
// [0, 2^31) and returns it.
//
// Allocation retries until it finds a vacant slot, which takes longer as the
// table fills up.
func (t *Table[S]) Allocate(d *Descriptor[S]) wasi.FD {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for {
		fd := wasi.FD(t.rand.Int31())
		if _, exists := t.fds[fd]; !exists {
			t.fds[fd] = d
			return fd
		}
	}
}

// Lookup returns the descriptor at fd with a reference acquired. The caller
// must call Release on the descriptor when done with it.
func (t *Table[S]) Lookup(fd wasi.FD) (*Descriptor[S], wasi.Errno) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	d, ok := t.fds[fd]
	if !ok {
		return nil, wasi.EBADF
	}
	d.acquire()
	return d, wasi.ESUCCESS
}

// lookupPair resolves two descriptors in one step: either both are returned
// or the lookup fails with EBADF.
func (t *Table[S]) lookupPair(fd1, fd2 wasi.FD) (*Descriptor[S], *Descriptor[S], wasi.Errno) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	d1, ok1 := t.fds[fd1]
	d2, ok2 := t.fds[fd2]
	if !ok1 || !ok2 {
		return nil, nil, wasi.EBADF
	}
	d1.acquire()
	d2.acquire()
	return d1, d2, wasi.ESUCCESS
}

// Close removes fd from the table.
func (t *Table[S]) Close(fd wasi.FD) wasi.Errno {
	t.mutex.Lock()
	d, ok := t.fds[fd]
	delete(t.fds, fd)
	t.mutex.Unlock()

	if !ok {
		return wasi.EBADF
	}
	d.Release()
	return wasi.ESUCCESS
}

// Renumber replaces the descriptor at to with the descriptor at from. Both
// numbers must be in use. The descriptor remains reachable at from, and the
// one previously at to is released after the table lock was dropped.
func (t *Table[S]) Renumber(from, to wasi.FD) wasi.Errno {
	t.mutex.Lock()
	src, ok1 := t.fds[from]
	old, ok2 := t.fds[to]
	if !ok1 || !ok2 {
		t.mutex.Unlock()
		return wasi.EBADF
	}
	if from == to {
		t.mutex.Unlock()
		return wasi.ESUCCESS
	}
	src.acquire()
	t.fds[to] = src
	t.mutex.Unlock()

	old.Release()
	return wasi.ESUCCESS
}

// Len returns the number of descriptors in the table.
func (t *Table[S]) Len() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.fds)
}

// CloseAll removes all the descriptors from the table.
func (t *Table[S]) CloseAll() {
	t.mutex.Lock()
	fds := t.fds
	t.fds = make(map[wasi.FD]*Descriptor[S])
	t.mutex.Unlock()

	for _, d := range fds {
		d.Release()
	}
}

// With calls fn with the descriptor at fd, holding a reference for the
// duration of the call.
func With[S wasi.String[S], R any](t *Table[S], fd wasi.FD, fn func(*Descriptor[S]) (R, wasi.Errno)) (R, wasi.Errno) {
	d, errno := t.Lookup(fd)
	if errno != wasi.ESUCCESS {
		var zero R
		return zero, errno
	}
	defer d.Release()
	return fn(d)
}

// Use is like With for functions which only return an error code.
func Use[S wasi.String[S]](t *Table[S], fd wasi.FD, fn func(*Descriptor[S]) wasi.Errno) wasi.Errno {
	d, errno := t.Lookup(fd)
	if errno != wasi.ESUCCESS {
		return errno
	}
	defer d.Release()
	return fn(d)
}

// UsePair calls fn with the descriptors at fd1 and fd2, which are resolved
// together: if either is missing, fn is not called and EBADF is returned.
func UsePair[S wasi.String[S]](t *Table[S], fd1, fd2 wasi.FD, fn func(*Descriptor[S], *Descriptor[S]) wasi.Errno) wasi.Errno {
	d1, d2, errno := t.lookupPair(fd1, fd2)
	if errno != wasi.ESUCCESS {
		return errno
	}
	defer d1.Release()
	defer d2.Release()
	return fn(d1, d2)
}

// Open opens path relative to the directory at fd and allocates a descriptor
// for the new resource.
func (t *Table[S]) Open(fd wasi.FD, flags wasi.LookupFlags, path S, oflags wasi.OFlags, rights Rights, fdflags wasi.FDFlags) (wasi.FD, wasi.Errno) {
	child, errno := With(t, fd, func(d *Descriptor[S]) (*Descriptor[S], wasi.Errno) {
		return d.Open(flags, path, oflags, rights, fdflags)
	})
	if errno != wasi.ESUCCESS {
		return 0, errno
	}
	return t.Allocate(child), wasi.ESUCCESS
}
