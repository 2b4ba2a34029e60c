package fdtable

import (
	"syscall"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

func fillSysStat(stat *wasi.FileStat, sys any) {
	if s, ok := sys.(*syscall.Stat_t); ok {
		stat.Device = wasi.Device(s.Dev)
		stat.Inode = wasi.Inode(s.Ino)
		stat.NLink = wasi.LinkCount(s.Nlink)
		stat.AccessTime = wasi.Timestamp(s.Atim.Nano())
		stat.ChangeTime = wasi.Timestamp(s.Ctim.Nano())
	}
}
