// Package host implements the WASI functions on top of the descriptor table
// and runs guest programs.
package host

import (
	"context"
	"crypto/rand"
	"io"
	"io/fs"
	mathrand "math/rand"
	"net"
	"runtime"

	"github.com/stealthrocket/wasihost/internal/fdtable"
	"github.com/stealthrocket/wasihost/internal/wasi"
)

// Option represents configuration options that can be set when creating a
// System.
type Option[S wasi.String[S]] func(*System[S])

// WithStdio configures the streams exposed to the guest as its standard
// input, output, and error. Nil streams are replaced by empty ones.
func WithStdio[S wasi.String[S]](stdin io.Reader, stdout, stderr io.Writer) Option[S] {
	return func(s *System[S]) { s.stdin, s.stdout, s.stderr = stdin, stdout, stderr }
}

// WithDirectory pre-opens a read-only view of fsys, which the guest finds
// under name.
func WithDirectory[S wasi.String[S]](fsys fs.FS, name S) Option[S] {
	return func(s *System[S]) {
		s.dirs = append(s.dirs, preopenDir[S]{fsys: fsys, name: name})
	}
}

// WithSocket pre-opens a connected socket.
func WithSocket[S wasi.String[S]](conn net.Conn) Option[S] {
	return func(s *System[S]) { s.socks = append(s.socks, conn) }
}

// WithRandom configures the source of random_get. The default is the
// operating system CSPRNG.
func WithRandom[S wasi.String[S]](r io.Reader) Option[S] {
	return func(s *System[S]) { s.rand = r }
}

// WithTableSource configures the source of the descriptor numbers allocated
// by path_open. Tests use it to make allocations deterministic.
func WithTableSource[S wasi.String[S]](src mathrand.Source) Option[S] {
	return func(s *System[S]) { s.src = src }
}

type preopenDir[S wasi.String[S]] struct {
	fsys fs.FS
	name S
}

// System implements wasi.Imports for a single guest.
//
// The standard streams occupy descriptors 0, 1, and 2. Pre-opened directories
// follow from descriptor 3, then pre-opened sockets, so guests enumerating
// pre-opens find them before the first gap.
type System[S wasi.String[S]] struct {
	args   []S
	env    []S
	rand   io.Reader
	src    mathrand.Source
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	dirs   []preopenDir[S]
	socks  []net.Conn
	fds    *fdtable.Table[S]
}

var _ wasi.Imports[wasi.UTF8] = (*System[wasi.UTF8])(nil)

// NewSystem creates a System passing args and env to the guest.
func NewSystem[S wasi.String[S]](args, env []S, opts ...Option[S]) *System[S] {
	s := &System[S]{
		args:   args,
		env:    env,
		rand:   rand.Reader,
		stdin:  eofReader{},
		stdout: io.Discard,
		stderr: io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stdin == nil {
		s.stdin = eofReader{}
	}
	if s.stdout == nil {
		s.stdout = io.Discard
	}
	if s.stderr == nil {
		s.stderr = io.Discard
	}

	s.fds = fdtable.NewTable[S](s.src)
	stdio := fdtable.Rights{Base: wasi.AllRights}
	s.preopen(0, fdtable.NewDescriptor[S](fdtable.NewCharacterDevice(fdtable.Input(s.stdin)), stdio, 0))
	s.preopen(1, fdtable.NewDescriptor[S](fdtable.NewCharacterDevice(fdtable.Output(s.stdout)), stdio, 0))
	s.preopen(2, fdtable.NewDescriptor[S](fdtable.NewCharacterDevice(fdtable.Output(s.stderr)), stdio, 0))

	fd := wasi.FD(3)
	for _, dir := range s.dirs {
		s.preopen(fd, fdtable.NewPreopen(fdtable.NewDirectory(dir.fsys, "."), fdtable.Rights{
			Base:       fdtable.DirectoryRights,
			Inheriting: fdtable.DirectoryRights | fdtable.ReadOnlyFileRights,
		}, dir.name))
		fd++
	}
	for _, conn := range s.socks {
		s.preopen(fd, fdtable.NewDescriptor[S](fdtable.NewSocket(conn), fdtable.Rights{
			Base: fdtable.SocketRights,
		}, 0))
		fd++
	}
	return s
}

func (s *System[S]) preopen(fd wasi.FD, d *fdtable.Descriptor[S]) {
	if errno := s.fds.Insert(fd, d); errno != wasi.ESUCCESS {
		panic("host: descriptor " + errno.Name() + " while pre-opening")
	}
}

// Close releases all the descriptors of the guest.
func (s *System[S]) Close(ctx context.Context) error {
	s.fds.CloseAll()
	return nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

func (s *System[S]) ArgsGet(ctx context.Context) ([]S, wasi.Errno) {
	return s.args, wasi.ESUCCESS
}

func (s *System[S]) EnvironGet(ctx context.Context) ([]S, wasi.Errno) {
	return s.env, wasi.ESUCCESS
}

func (s *System[S]) ClockResGet(ctx context.Context, id wasi.ClockID) (wasi.Timestamp, wasi.Errno) {
	return clockResolution(id)
}

func (s *System[S]) ClockTimeGet(ctx context.Context, id wasi.ClockID, precision wasi.Timestamp) (wasi.Timestamp, wasi.Errno) {
	return clockTime(id)
}

func (s *System[S]) ProcExit(ctx context.Context, code wasi.ExitCode) *wasi.Exit {
	s.fds.CloseAll()
	return &wasi.Exit{Code: code}
}

// ProcRaise is not supported: signals have no meaning in the guest.
func (s *System[S]) ProcRaise(ctx context.Context, signal wasi.Signal) wasi.Errno {
	return wasi.ENOSYS
}

func (s *System[S]) SchedYield(ctx context.Context) wasi.Errno {
	runtime.Gosched()
	return wasi.ESUCCESS
}

func (s *System[S]) RandomGet(ctx context.Context, b []byte) wasi.Errno {
	if _, err := io.ReadFull(s.rand, b); err != nil {
		return wasi.EIO
	}
	return wasi.ESUCCESS
}
