package abi

import (
	"context"

	"github.com/containerd/log"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wazergo"
	"github.com/tetratelabs/wazero/api"
)

// Trace returns a decorator which logs every host function call at the debug
// level of the logger carried by the context.
func Trace[S wasi.String[S]]() Decorator[S] {
	return func(name string, fn wazergo.Function[*Module[S]]) wazergo.Function[*Module[S]] {
		call := fn.Func
		fn.Func = func(m *Module[S], ctx context.Context, mod api.Module, stack []uint64) {
			params := make([]uint64, len(fn.Params))
			copy(params, stack)
			entry := log.G(ctx).WithFields(log.Fields{
				"function": name,
				"params":   params,
			})
			if len(fn.Results) == 0 {
				entry.Debug("host call")
				call(m, ctx, mod, stack)
				return
			}
			call(m, ctx, mod, stack)
			entry.WithField("errno", wasi.Errno(api.DecodeU32(stack[0])).Name()).Debug("host call")
		}
		return fn
	}
}
