package fdtable

import (
	"errors"
	"io"
	"io/fs"
	"net"
	"os"
	"syscall"

	wasigo "github.com/stealthrocket/wasi-go"
	"github.com/stealthrocket/wasihost/internal/wasi"
)

// makeErrno translates errors returned by resource backends to the error code
// reported to the guest.
func makeErrno(err error) wasi.Errno {
	if err == nil {
		return wasi.ESUCCESS
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return wasi.Errno(wasigo.MakeErrno(errno))
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return wasi.ENOENT
	case errors.Is(err, fs.ErrExist):
		return wasi.EEXIST
	case errors.Is(err, fs.ErrPermission):
		return wasi.EPERM
	case errors.Is(err, fs.ErrInvalid):
		return wasi.EINVAL
	case errors.Is(err, fs.ErrClosed), errors.Is(err, net.ErrClosed):
		return wasi.EBADF
	case errors.Is(err, os.ErrDeadlineExceeded):
		return wasi.ETIMEDOUT
	case errors.Is(err, io.ErrClosedPipe):
		return wasi.EPIPE
	case errors.Is(err, errors.ErrUnsupported):
		return wasi.ENOTSUP
	default:
		return wasi.EIO
	}
}
