package main

import (
	"context"
)

const unknownCommand = `wasihost %s: unknown command
For a list of commands available, run 'wasihost help'.`

func unknown(ctx context.Context, cmd string) error {
	return usageError(unknownCommand, cmd)
}
