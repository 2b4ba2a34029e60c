package fdtable

import (
	"io/fs"

	"github.com/stealthrocket/wasihost/internal/wasi"
)

func fileTypeOf(mode fs.FileMode) wasi.FileType {
	switch {
	case mode.IsRegular():
		return wasi.RegularFileType
	case mode.IsDir():
		return wasi.DirectoryType
	case mode&fs.ModeSymlink != 0:
		return wasi.SymbolicLinkType
	case mode&fs.ModeCharDevice != 0:
		return wasi.CharacterDeviceType
	case mode&fs.ModeDevice != 0:
		return wasi.BlockDeviceType
	case mode&fs.ModeSocket != 0:
		return wasi.SocketStreamType
	default:
		return wasi.UnknownType
	}
}

func makeFileStat(info fs.FileInfo) wasi.FileStat {
	mtime := wasi.Timestamp(info.ModTime().UnixNano())
	stat := wasi.FileStat{
		FileType:   fileTypeOf(info.Mode()),
		NLink:      1,
		Size:       wasi.FileSize(info.Size()),
		AccessTime: mtime,
		ModifyTime: mtime,
		ChangeTime: mtime,
	}
	if info.IsDir() {
		stat.Size = 0
	}
	fillSysStat(&stat, info.Sys())
	return stat
}
