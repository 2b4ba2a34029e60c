package abi

import (
	"context"

	"github.com/stealthrocket/wasihost/internal/guest"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wasihost/internal/wire"
)

// PollOneOff decodes the nsubs subscriptions at in, waits for events, and
// writes them to out. At most nsubs events are written, which is the capacity
// that the guest reserved for them.
func (m *Module[S]) PollOneOff(ctx context.Context, mem guest.Memory, in, out, nsubs, nevents uint32) wasi.Errno {
	if nsubs == 0 {
		return wasi.EINVAL
	}
	subs := guest.SliceOf(mem, wire.MakeSlicePtr[wire.Subscription](in, nsubs))
	// Touching the last element of each array faults on bad pointers before
	// anything is allocated or the call blocks.
	subs.Load(subs.Len() - 1)
	subscriptions := make([]wasi.Subscription, subs.Len())
	for i := range subscriptions {
		s, err := wasi.SubscriptionFromNative(subs.Load(i))
		if err != nil {
			return wasi.EINVAL
		}
		subscriptions[i] = s
	}
	events := guest.SliceOf(mem, wire.MakeSlicePtr[wire.Event](out, nsubs))
	events.Load(events.Len() - 1)

	results, errno := m.imports.PollOneOff(ctx, subscriptions)
	if errno != wasi.ESUCCESS {
		return errno
	}
	if len(results) > events.Len() {
		results = results[:events.Len()]
	}
	for i, e := range results {
		events.Store(i, e.ToNative())
	}
	storeU32(mem, nevents, uint32(len(results)))
	return wasi.ESUCCESS
}
