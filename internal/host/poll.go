package host

import (
	"context"
	"math"
	"time"

	"github.com/stealthrocket/wasihost/internal/fdtable"
	"github.com/stealthrocket/wasihost/internal/wasi"
)

// PollOneOff reports the readiness of descriptors immediately: the resources
// of the host never block the guest for long. When only clock subscriptions
// are present, the call sleeps until the earliest of them expires, and returns
// an event for each clock which expired by then.
func (s *System[S]) PollOneOff(ctx context.Context, subscriptions []wasi.Subscription) ([]wasi.Event, wasi.Errno) {
	if len(subscriptions) == 0 {
		return nil, wasi.EINVAL
	}
	events := make([]wasi.Event, 0, len(subscriptions))
	timeouts := make([]time.Duration, len(subscriptions))
	earliest := time.Duration(-1)

	for i, sub := range subscriptions {
		timeouts[i] = -1
		event := wasi.Event{UserData: sub.UserData, Type: sub.Event.EventType()}

		switch e := sub.Event.(type) {
		case wasi.SubscriptionClock:
			timeout, errno := s.timeout(e)
			if errno != wasi.ESUCCESS {
				event.Error = errno
				events = append(events, event)
				continue
			}
			timeouts[i] = timeout
			if earliest < 0 || timeout < earliest {
				earliest = timeout
			}
		case wasi.SubscriptionFDRead:
			event.Error = s.poll(e.FD)
			events = append(events, event)
		case wasi.SubscriptionFDWrite:
			event.Error = s.poll(e.FD)
			events = append(events, event)
		}
	}

	if len(events) > 0 || earliest < 0 {
		return events, wasi.ESUCCESS
	}

	if earliest > 0 {
		t := time.NewTimer(earliest)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, wasi.EINTR
		}
	}

	for i, sub := range subscriptions {
		if timeouts[i] >= 0 && timeouts[i] <= earliest {
			events = append(events, wasi.Event{UserData: sub.UserData, Type: wasi.ClockEvent})
		}
	}
	return events, wasi.ESUCCESS
}

func (s *System[S]) poll(fd wasi.FD) wasi.Errno {
	return fdtable.Use(s.fds, fd, (*fdtable.Descriptor[S]).Poll)
}

// timeout returns how long to wait for a clock subscription, converting
// absolute deadlines to a duration relative to the current time of the clock.
func (s *System[S]) timeout(sub wasi.SubscriptionClock) (time.Duration, wasi.Errno) {
	if _, errno := clockResolution(sub.ID); errno != wasi.ESUCCESS {
		return 0, errno
	}
	if !sub.Flags.Has(wasi.Abstime) {
		return duration(sub.Timeout), wasi.ESUCCESS
	}
	now, errno := clockTime(sub.ID)
	if errno != wasi.ESUCCESS {
		return 0, errno
	}
	if sub.Timeout <= now {
		return 0, wasi.ESUCCESS
	}
	return duration(sub.Timeout - now), wasi.ESUCCESS
}

func duration(t wasi.Timestamp) time.Duration {
	if t > math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(t)
}
