//go:build unix

package main

import (
	"github.com/stealthrocket/wasihost/internal/config"
	"github.com/stealthrocket/wasihost/internal/wasi"
)

func init() {
	runners[config.OSPath] = runWith[wasi.OSPath]
}
