//go:build !linux

package host

import (
	"time"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

var epoch = time.Now()

func clockResolution(id wasi.ClockID) (wasi.Timestamp, wasi.Errno) {
	switch id {
	case wasi.Realtime, wasi.Monotonic:
		return 1, wasi.ESUCCESS
	case wasi.ProcessCPUTimeID, wasi.ThreadCPUTimeID:
		return 0, wasi.ENOTSUP
	default:
		return 0, wasi.EINVAL
	}
}

func clockTime(id wasi.ClockID) (wasi.Timestamp, wasi.Errno) {
	switch id {
	case wasi.Realtime:
		return wasi.Timestamp(time.Now().UnixNano()), wasi.ESUCCESS
	case wasi.Monotonic:
		return wasi.Timestamp(time.Since(epoch)), wasi.ESUCCESS
	case wasi.ProcessCPUTimeID, wasi.ThreadCPUTimeID:
		return 0, wasi.ENOTSUP
	default:
		return 0, wasi.EINVAL
	}
}
