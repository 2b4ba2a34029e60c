package main

import (
	"context"
	"fmt"
	"strings"
)

const helpUsage = `
Usage:	wasihost <command> [options]

Runtime Commands:
   run      Run a WebAssembly program on the WASI host

Other Commands:
   config   View or edit the wasihost configuration
   help     Show usage information about wasihost commands
   version  Show the wasihost version information

Global Options:
   -c, --config path  Path to the wasihost configuration file (overrides WASIHOSTCONFIG)
   -h, --help         Show usage information

For a description of each command, run 'wasihost help <command>'.`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("wasihost help", helpUsage)
	args = parseFlags(flagSet, args)

	var cmd string
	var msg string

	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "config":
		msg = configUsage
	case "help", "":
		msg = helpUsage
	case "run":
		msg = runUsage
	case "version":
		msg = versionUsage
	default:
		return usageError("wasihost help %s: unknown command", cmd)
	}

	fmt.Println(strings.TrimSpace(msg))
	return nil
}
