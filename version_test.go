package main

import (
	"strings"
	"testing"

	"github.com/stealthrocket/wasihost/internal/assert"
)

var versionTests = tests{
	"show the version command help with the short option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "version", "-h")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost version\n")
		assert.Equal(t, stderr, "")
	},

	"show the version command help with the long option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "version", "--help")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost version\n")
		assert.Equal(t, stderr, "")
	},

	"the version starts with the prefix wasihost": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "version")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "wasihost ")
		assert.Equal(t, stderr, "")
	},

	"the version number is not empty": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "version")
		assert.OK(t, err)
		assert.Equal(t, stderr, "")

		_, version, _ := strings.Cut(strings.TrimSpace(stdout), " ")
		assert.NotEqual(t, version, "")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, err := wasihost(t, "version", "-_")
		assert.ExitError(t, err, 2)
	},

	"passing arguments to the command causes an error": func(t *testing.T) {
		_, stderr, err := wasihost(t, "version", "1.0")
		assert.ExitError(t, err, 2)
		assert.HasPrefix(t, stderr, "wasihost version: unexpected arguments")
	},
}
