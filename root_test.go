package main

import (
	"testing"

	"github.com/stealthrocket/wasihost/internal/assert"
)

var rootTests = tests{
	"invoking wasihost without a command prints the introduction message": func(t *testing.T) {
		stdout, stderr, err := wasihost(t)
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "wasihost - WebAssembly System Interface host\n")
		assert.Equal(t, stderr, "")
	},

	"show the wasihost help with the short option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "-h")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the wasihost help with the long option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "--help")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost <command> ")
		assert.Equal(t, stderr, "")
	},
}
