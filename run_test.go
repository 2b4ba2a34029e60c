package main

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stealthrocket/wasihost/internal/assert"
	"github.com/stealthrocket/wasihost/internal/wasmtest"
	"golang.org/x/net/nettest"
)

// hello writes "hello\n" to stdout.
var hello = wasmtest.Program{
	Imports: []wasmtest.Import{wasmtest.WASI("fd_write", 4)},
	Data: []wasmtest.Data{
		{Offset: 0, Bytes: wasmtest.IOVec(32, 6)},
		{Offset: 32, Bytes: []byte("hello\n")},
	},
	Start: wasmtest.Code(
		wasmtest.I32Const(1),
		wasmtest.I32Const(0),
		wasmtest.I32Const(1),
		wasmtest.I32Const(16),
		wasmtest.Call(0),
		wasmtest.Drop(),
	),
}

// exitWithCount exits with the count stored by a *_sizes_get function.
func exitWithCount(sizesGet string) wasmtest.Program {
	return wasmtest.Program{
		Imports: []wasmtest.Import{wasmtest.WASI(sizesGet, 2), wasmtest.ProcExit},
		Start: wasmtest.Code(
			wasmtest.I32Const(0),
			wasmtest.I32Const(4),
			wasmtest.Call(0),
			wasmtest.Drop(),
			wasmtest.I32Const(0),
			wasmtest.I32Load(),
			wasmtest.Call(1),
		),
	}
}

var (
	argc = exitWithCount("args_sizes_get")
	envc = exitWithCount("environ_sizes_get")
)

// prestat exits with the error code of fd_prestat_get on descriptor 3.
var prestat = wasmtest.Program{
	Imports: []wasmtest.Import{wasmtest.WASI("fd_prestat_get", 2), wasmtest.ProcExit},
	Start: wasmtest.Code(
		wasmtest.I32Const(3),
		wasmtest.I32Const(0),
		wasmtest.Call(0),
		wasmtest.Call(1),
	),
}

// filetype exits with the file type of descriptor 3.
var filetype = wasmtest.Program{
	Imports: []wasmtest.Import{wasmtest.WASI("fd_fdstat_get", 2), wasmtest.ProcExit},
	Start: wasmtest.Code(
		wasmtest.I32Const(3),
		wasmtest.I32Const(0),
		wasmtest.Call(0),
		wasmtest.Drop(),
		wasmtest.I32Const(0),
		wasmtest.I32Load(),
		wasmtest.Call(1),
	),
}

var trap = wasmtest.Program{
	Start: wasmtest.Unreachable(),
}

func writeProgram(t *testing.T, name string, code []byte) string {
	path := filepath.Join(t.TempDir(), name)
	assert.OK(t, os.WriteFile(path, code, 0666))
	return path
}

func compressZstd(t *testing.T, code []byte) []byte {
	enc, err := zstd.NewWriter(nil)
	assert.OK(t, err)
	defer enc.Close()
	return enc.EncodeAll(code, nil)
}

var runTests = tests{
	"show the run command help with the short option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "run", "-h")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost run ")
		assert.Equal(t, stderr, "")
	},

	"running without a module path is a usage error": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "run")
		assert.ExitError(t, err, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "wasihost run: missing module path\n")
	},

	"running a missing file is an error": func(t *testing.T) {
		_, stderr, err := wasihost(t, "run", filepath.Join(t.TempDir(), "nope.wasm"))
		assert.ExitError(t, err, 1)
		assert.HasPrefix(t, stderr, "ERR: wasihost run: could not read wasm file ")
	},

	"the guest writes to the standard output": func(t *testing.T) {
		path := writeProgram(t, "hello.wasm", hello.Encode())
		stdout, stderr, err := wasihost(t, "run", "--", path)
		assert.OK(t, err)
		assert.Equal(t, stdout, "hello\n")
		assert.Equal(t, stderr, "")
	},

	"compressed programs are decompressed": func(t *testing.T) {
		path := writeProgram(t, "hello.wasm.zst", compressZstd(t, hello.Encode()))
		stdout, _, err := wasihost(t, "run", path)
		assert.OK(t, err)
		assert.Equal(t, stdout, "hello\n")
	},

	"the exit code of the guest is the exit status": func(t *testing.T) {
		path := writeProgram(t, "argc.wasm", argc.Encode())
		_, stderr, err := wasihost(t, "run", path, "a", "b")
		assert.ExitError(t, err, 3)
		assert.Equal(t, stderr, "")
	},

	"options after the module path are passed to the guest": func(t *testing.T) {
		path := writeProgram(t, "argc.wasm", argc.Encode())
		_, _, err := wasihost(t, "run", path, "--verbose", "-T")
		assert.ExitError(t, err, 3)
	},

	"the verbose option prints the exit code": func(t *testing.T) {
		path := writeProgram(t, "argc.wasm", argc.Encode())
		_, stderr, err := wasihost(t, "run", "-v", path)
		assert.ExitError(t, err, 1)
		assert.Equal(t, stderr, "WASI program exited with exit code 1.\n")
	},

	"the verbose option prints a zero exit code": func(t *testing.T) {
		path := writeProgram(t, "hello.wasm", hello.Encode())
		stdout, stderr, err := wasihost(t, "run", "--verbose", path)
		assert.OK(t, err)
		assert.Equal(t, stdout, "hello\n")
		assert.Equal(t, stderr, "WASI program exited with exit code 0.\n")
	},

	"the restrict option hides the host environment": func(t *testing.T) {
		path := writeProgram(t, "envc.wasm", envc.Encode())
		_, _, err := wasihost(t, "run", "--restrict", path)
		assert.OK(t, err)

		_, _, err = wasihost(t, "run", "--restrict", "-e", "A=1", "--env", "B=2", path)
		assert.ExitError(t, err, 2)
	},

	"directories are pre-opened from descriptor 3": func(t *testing.T) {
		path := writeProgram(t, "prestat.wasm", prestat.Encode())
		_, _, err := wasihost(t, "run", "--dir", t.TempDir()+":/data", path)
		assert.OK(t, err)

		_, _, err = wasihost(t, "run", path)
		assert.ExitError(t, err, 8) // EBADF

		path = writeProgram(t, "filetype.wasm", filetype.Encode())
		_, _, err = wasihost(t, "run", "--dir", t.TempDir(), path)
		assert.ExitError(t, err, 3) // directory
	},

	"pre-opening a file as a directory is an error": func(t *testing.T) {
		path := writeProgram(t, "prestat.wasm", prestat.Encode())
		_, stderr, err := wasihost(t, "run", "--dir", path, path)
		assert.ExitError(t, err, 1)
		assert.HasPrefix(t, stderr, "ERR: wasihost run: ")
	},

	"dialed sockets are pre-opened": func(t *testing.T) {
		l, err := nettest.NewLocalListener("tcp")
		assert.OK(t, err)
		defer l.Close()
		go func() {
			for {
				c, err := l.Accept()
				if err != nil {
					return
				}
				c.Close()
			}
		}()

		path := writeProgram(t, "filetype.wasm", filetype.Encode())
		_, _, err = wasihost(t, "run", "-D", "tcp:"+l.Addr().String(), path)
		assert.ExitError(t, err, 6) // socket stream

		_, _, err = wasihost(t, "run", "--dial", l.Addr().String(), path)
		assert.ExitError(t, err, 6)
	},

	"dialing a closed address is an error": func(t *testing.T) {
		l, err := nettest.NewLocalListener("tcp")
		assert.OK(t, err)
		addr := l.Addr().(*net.TCPAddr).String()
		l.Close()

		path := writeProgram(t, "hello.wasm", hello.Encode())
		_, stderr, err := wasihost(t, "run", "--dial", addr, path)
		assert.ExitError(t, err, 1)
		assert.HasPrefix(t, stderr, "ERR: wasihost run: ")
	},

	"the trace option logs host function calls": func(t *testing.T) {
		path := writeProgram(t, "hello.wasm", hello.Encode())
		stdout, stderr, err := wasihost(t, "run", "--trace", path)
		assert.OK(t, err)
		assert.Equal(t, stdout, "hello\n")
		if !strings.Contains(stderr, "function=fd_write") || !strings.Contains(stderr, "errno=ESUCCESS") {
			t.Errorf("host call missing from the trace:\n%s", stderr)
		}
	},

	"all string representations run the guest": func(t *testing.T) {
		path := writeProgram(t, "hello.wasm", hello.Encode())
		for _, strs := range []string{"utf8", "bytes", "cstring", "ospath"} {
			stdout, _, err := wasihost(t, "run", "-S", strs, path)
			assert.OK(t, err)
			assert.Equal(t, stdout, "hello\n")
		}
	},

	"an unknown string representation is a usage error": func(t *testing.T) {
		path := writeProgram(t, "hello.wasm", hello.Encode())
		_, _, err := wasihost(t, "run", "--strings", "utf16", path)
		assert.ExitError(t, err, 2)
	},

	"an unknown log level is a usage error": func(t *testing.T) {
		path := writeProgram(t, "hello.wasm", hello.Encode())
		_, _, err := wasihost(t, "run", "--log-level", "verbose", path)
		assert.ExitError(t, err, 2)
	},

	"a trap is reported as an error": func(t *testing.T) {
		path := writeProgram(t, "trap.wasm", trap.Encode())
		_, stderr, err := wasihost(t, "run", path)
		assert.ExitError(t, err, 1)
		assert.HasPrefix(t, stderr, "ERR: wasihost run: ")
	},
}
