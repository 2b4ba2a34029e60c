//go:build !linux

package fdtable

import "github.com/stealthrocket/wasihost/internal/wasi"

func fillSysStat(*wasi.FileStat, any) {}
