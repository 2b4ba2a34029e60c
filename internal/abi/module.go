// Package abi implements the wasi_snapshot_preview1 host module: the binding
// of the functions imported by WASI guests to an implementation of the
// wasi.Imports interface.
//
// Host functions decode their arguments from the guest stack and memory,
// rejecting values which have no valid interpretation with EINVAL before
// anything else happens. Input buffers are copied out of the guest memory
// before the implementation is invoked, and output buffers are collected in
// host memory and copied back when the call returns, so implementations never
// hold references to the guest memory.
package abi

import (
	"context"

	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wazergo"
	"github.com/stealthrocket/wazergo/types"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
)

// ModuleName is the name of the host module that WASI guests import.
const ModuleName = "wasi_snapshot_preview1"

// Module is the state of an instance of the host module.
type Module[S wasi.String[S]] struct {
	imports wasi.Imports[S]
}

// NewModule returns a module which dispatches host function calls to imports.
func NewModule[S wasi.String[S]](imports wasi.Imports[S]) *Module[S] {
	return &Module[S]{imports: imports}
}

// WithImports configures the implementation of the WASI functions.
func WithImports[S wasi.String[S]](imports wasi.Imports[S]) wazergo.Option[*Module[S]] {
	return wazergo.OptionFunc(func(m *Module[S]) { m.imports = imports })
}

// Close closes the implementation if it implements a Close method.
func (m *Module[S]) Close(ctx context.Context) error {
	if c, ok := m.imports.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}

// Decorator transforms the host functions of the module.
type Decorator[S wasi.String[S]] func(name string, fn wazergo.Function[*Module[S]]) wazergo.Function[*Module[S]]

type functions[S wasi.String[S]] wazergo.Functions[*Module[S]]

func (f functions[S]) Name() string {
	return ModuleName
}

func (f functions[S]) Functions() wazergo.Functions[*Module[S]] {
	return (wazergo.Functions[*Module[S]])(f)
}

func (f functions[S]) Instantiate(ctx context.Context, opts ...wazergo.Option[*Module[S]]) (*Module[S], error) {
	mod := &Module[S]{}
	wazergo.Configure(mod, opts...)
	if mod.imports == nil {
		return nil, errNoImports
	}
	return mod, nil
}

type errorString string

func (e errorString) Error() string { return string(e) }

const errNoImports = errorString("WASI implementation not provided")

// hostFunc is the shape of the functions of the module which return an
// error code. The parameters are the raw values of the guest stack.
type hostFunc[S wasi.String[S]] func(m *Module[S], ctx context.Context, mem guest.Memory, stack []uint64) wasi.Errno

var (
	i32 types.Value = types.Int32(0)
	i64 types.Value = types.Int64(0)
)

func function[S wasi.String[S]](fn hostFunc[S], params ...types.Value) wazergo.Function[*Module[S]] {
	return wazergo.Function[*Module[S]]{
		Params:  params,
		Results: []types.Value{types.Errno(0)},
		Func: func(m *Module[S], ctx context.Context, mod api.Module, stack []uint64) {
			errno := fn(m, ctx, guest.New(mod.Memory()), stack)
			stack[0] = api.EncodeU32(uint32(errno))
		},
	}
}

// procExit has no results and never returns: it unwinds the guest with a
// *sys.ExitError carrying the exit code.
func procExit[S wasi.String[S]]() wazergo.Function[*Module[S]] {
	return wazergo.Function[*Module[S]]{
		Params: []types.Value{i32},
		Func: func(m *Module[S], ctx context.Context, mod api.Module, stack []uint64) {
			code := wasi.ExitCode(api.DecodeU32(stack[0]))
			if exit := m.imports.ProcExit(ctx, code); exit != nil {
				code = exit.Code
			}
			_ = mod.CloseWithExitCode(ctx, uint32(code))
			panic(sys.NewExitError(uint32(code)))
		},
	}
}

func u32(v uint64) uint32 { return api.DecodeU32(v) }

// HostModule returns the definition of the wasi_snapshot_preview1 module,
// with the decorators applied to every function.
func HostModule[S wasi.String[S]](decorators ...Decorator[S]) wazergo.HostModule[*Module[S]] {
	type M = Module[S]
	fns := functions[S]{
		"args_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.ArgsGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"args_sizes_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.ArgsSizesGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"environ_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.EnvironGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"environ_sizes_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.EnvironSizesGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"clock_res_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.ClockResGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"clock_time_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.ClockTimeGet(ctx, mem, u32(s[0]), s[1], u32(s[2]))
		}, i32, i64, i32),
		"fd_advise": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDAdvise(ctx, mem, u32(s[0]), s[1], s[2], u32(s[3]))
		}, i32, i64, i64, i32),
		"fd_allocate": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDAllocate(ctx, mem, u32(s[0]), s[1], s[2])
		}, i32, i64, i64),
		"fd_close": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDClose(ctx, mem, u32(s[0]))
		}, i32),
		"fd_datasync": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDDataSync(ctx, mem, u32(s[0]))
		}, i32),
		"fd_fdstat_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDStatGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"fd_fdstat_set_flags": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDStatSetFlags(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"fd_fdstat_set_rights": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDStatSetRights(ctx, mem, u32(s[0]), s[1], s[2])
		}, i32, i64, i64),
		"fd_filestat_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDFileStatGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"fd_filestat_set_size": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDFileStatSetSize(ctx, mem, u32(s[0]), s[1])
		}, i32, i64),
		"fd_filestat_set_times": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDFileStatSetTimes(ctx, mem, u32(s[0]), s[1], s[2], u32(s[3]))
		}, i32, i64, i64, i32),
		"fd_pread": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDPread(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), s[3], u32(s[4]))
		}, i32, i32, i32, i64, i32),
		"fd_prestat_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDPreStatGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"fd_prestat_dir_name": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDPreStatDirName(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]))
		}, i32, i32, i32),
		"fd_pwrite": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDPwrite(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), s[3], u32(s[4]))
		}, i32, i32, i32, i64, i32),
		"fd_read": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDRead(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]))
		}, i32, i32, i32, i32),
		"fd_readdir": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDReadDir(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), s[3], u32(s[4]))
		}, i32, i32, i32, i64, i32),
		"fd_renumber": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDRenumber(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"fd_seek": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDSeek(ctx, mem, u32(s[0]), int64(s[1]), u32(s[2]), u32(s[3]))
		}, i32, i64, i32, i32),
		"fd_sync": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDSync(ctx, mem, u32(s[0]))
		}, i32),
		"fd_tell": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDTell(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"fd_write": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.FDWrite(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]))
		}, i32, i32, i32, i32),
		"path_create_directory": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathCreateDirectory(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]))
		}, i32, i32, i32),
		"path_filestat_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathFileStatGet(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]))
		}, i32, i32, i32, i32, i32),
		"path_filestat_set_times": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathFileStatSetTimes(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), s[4], s[5], u32(s[6]))
		}, i32, i32, i32, i32, i64, i64, i32),
		"path_link": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathLink(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]), u32(s[5]), u32(s[6]))
		}, i32, i32, i32, i32, i32, i32, i32),
		"path_open": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathOpen(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]), s[5], s[6], u32(s[7]), u32(s[8]))
		}, i32, i32, i32, i32, i32, i64, i64, i32, i32),
		"path_readlink": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathReadLink(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]), u32(s[5]))
		}, i32, i32, i32, i32, i32, i32),
		"path_remove_directory": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathRemoveDirectory(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]))
		}, i32, i32, i32),
		"path_rename": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathRename(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]), u32(s[5]))
		}, i32, i32, i32, i32, i32, i32),
		"path_symlink": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathSymlink(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]))
		}, i32, i32, i32, i32, i32),
		"path_unlink_file": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PathUnlinkFile(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]))
		}, i32, i32, i32),
		"poll_oneoff": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.PollOneOff(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]))
		}, i32, i32, i32, i32),
		"proc_exit": procExit[S](),
		"proc_raise": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.ProcRaise(ctx, mem, u32(s[0]))
		}, i32),
		"sched_yield": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.SchedYield(ctx, mem)
		}),
		"random_get": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.RandomGet(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
		"sock_recv": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.SockRecv(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]), u32(s[5]))
		}, i32, i32, i32, i32, i32, i32),
		"sock_send": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.SockSend(ctx, mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]), u32(s[4]))
		}, i32, i32, i32, i32, i32),
		"sock_shutdown": function(func(m *M, ctx context.Context, mem guest.Memory, s []uint64) wasi.Errno {
			return m.SockShutdown(ctx, mem, u32(s[0]), u32(s[1]))
		}, i32, i32),
	}
	for name, fn := range fns {
		fn.Name = name
		for _, decorate := range decorators {
			fn = decorate(name, fn)
		}
		fns[name] = fn
	}
	return fns
}
