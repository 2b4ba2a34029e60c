package host

import (
	wasigo "github.com/stealthrocket/wasi-go"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"golang.org/x/sys/unix"
)

var clockIDs = [...]int32{
	wasi.Realtime:         unix.CLOCK_REALTIME,
	wasi.Monotonic:        unix.CLOCK_MONOTONIC,
	wasi.ProcessCPUTimeID: unix.CLOCK_PROCESS_CPUTIME_ID,
	wasi.ThreadCPUTimeID:  unix.CLOCK_THREAD_CPUTIME_ID,
}

func clockResolution(id wasi.ClockID) (wasi.Timestamp, wasi.Errno) {
	if int(id) >= len(clockIDs) {
		return 0, wasi.EINVAL
	}
	var ts unix.Timespec
	if err := unix.ClockGetres(clockIDs[id], &ts); err != nil {
		return 0, wasi.Errno(wasigo.MakeErrno(err))
	}
	return wasi.Timestamp(ts.Nano()), wasi.ESUCCESS
}

func clockTime(id wasi.ClockID) (wasi.Timestamp, wasi.Errno) {
	if int(id) >= len(clockIDs) {
		return 0, wasi.EINVAL
	}
	var ts unix.Timespec
	if err := unix.ClockGettime(clockIDs[id], &ts); err != nil {
		return 0, wasi.Errno(wasigo.MakeErrno(err))
	}
	return wasi.Timestamp(ts.Nano()), wasi.ESUCCESS
}
