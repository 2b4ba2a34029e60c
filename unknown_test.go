package main

import (
	"testing"

	"github.com/stealthrocket/wasihost/internal/assert"
)

var unknownTests = tests{
	"an error is reported when invoking an unknown command": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "whatever")
		assert.ExitError(t, err, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "wasihost whatever: unknown command\nFor a list of commands available, run 'wasihost help'.\n")
	},
}
