package main

import (
	"testing"

	"github.com/stealthrocket/wasihost/internal/assert"
)

var helpTests = tests{
	"calling help with an unknown command causes an error": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "whatever")
		assert.ExitError(t, err, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "wasihost help whatever: unknown command\n")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, err := wasihost(t, "help", "-_")
		assert.ExitError(t, err, 2)
	},

	"show the help command help with the short option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "-h")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help with the long option": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "--help")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help after a command name": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "run", "--help")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost <command> ")
		assert.Equal(t, stderr, "")
	},

	"wasihost help": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost <command> ")
		assert.Equal(t, stderr, "")
	},

	"wasihost help config": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "config")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost config ")
		assert.Equal(t, stderr, "")
	},

	"wasihost help help": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "help")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost <command> ")
		assert.Equal(t, stderr, "")
	},

	"wasihost help run": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "run")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost run ")
		assert.Equal(t, stderr, "")
	},

	"wasihost help version": func(t *testing.T) {
		stdout, stderr, err := wasihost(t, "help", "version")
		assert.OK(t, err)
		assert.HasPrefix(t, stdout, "Usage:\twasihost version\n")
		assert.Equal(t, stderr, "")
	},
}
