package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/containerd/log"
	"github.com/sirupsen/logrus"
	"github.com/stealthrocket/wasihost/internal/abi"
	"github.com/stealthrocket/wasihost/internal/config"
	"github.com/stealthrocket/wasihost/internal/host"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/tetratelabs/wazero"
)

const runUsage = `
Usage:	wasihost run [options] [--] <module> [args...]

Options:
   -c, --config path       Path to the wasihost configuration file (overrides WASIHOSTCONFIG)
   -D, --dial addr         Expose a socket connected to the specified address (network:address, tcp by default)
       --dir dir           Expose a read-only directory to the guest module (host[:guest])
   -e, --env name=value    Pass an environment variable to the guest module
   -h, --help              Show this usage information
       --log-level level   Log level, one of panic, fatal, error, warn, info, debug, trace (overrides log.level)
       --restrict          Do not forward the host environment to the guest module
   -S, --strings repr      Representation of strings, one of utf8, bytes, cstring, ospath (overrides strings.representation)
   -T, --trace             Enable strace-like logging of host function calls
   -v, --verbose           Print the exit code of the guest module
`

func run(ctx context.Context, args []string) error {
	var (
		envs     stringList
		dials    stringList
		dirs     stringList
		level    logLevel
		strs     config.Strings
		restrict = false
		trace    = false
		verbose  = false
	)

	flagSet := newFlagSet("wasihost run", runUsage)
	customVar(flagSet, &envs, "e", "env")
	customVar(flagSet, &dials, "D", "dial")
	customVar(flagSet, &dirs, "dir")
	customVar(flagSet, &level, "log-level")
	customVar(flagSet, &strs, "S", "strings")
	boolVar(flagSet, &restrict, "restrict")
	boolVar(flagSet, &trace, "T", "trace")
	boolVar(flagSet, &verbose, "v", "verbose")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	args = flagSet.Args()
	if len(args) == 0 {
		return usageError("wasihost run: missing module path")
	}

	c, err := config.Load()
	if err != nil {
		return err
	}
	if level == "" {
		level = logLevel(c.Log.Level)
	}
	if strs == "" {
		strs = c.Strings.Representation
	}
	if err := setupLogging(string(level), trace); err != nil {
		return err
	}

	runWithStrings, ok := runners[strs]
	if !ok {
		return fmt.Errorf("string representation %q is not supported on this platform", strs)
	}

	if !restrict {
		envs = append(os.Environ(), envs...)
	}

	wasmPath := args[0]
	wasmCode, err := os.ReadFile(wasmPath)
	if err != nil {
		return fmt.Errorf("could not read wasm file '%s': %w", wasmPath, err)
	}

	runtime, err := c.NewRuntime(ctx)
	if err != nil {
		return err
	}
	defer runtime.Close(ctx)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rc, err := runWithStrings(ctx, runtime, &runOptions{
		path:  wasmPath,
		code:  wasmCode,
		args:  args[1:],
		env:   envs,
		dirs:  dirs,
		dials: dials,
		trace: trace,
	})
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "WASI program exited with exit code %d.\n", rc)
	}
	if rc != 0 {
		return exitCode(rc)
	}
	return nil
}

func setupLogging(level string, trace bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	// Host calls are traced at the debug level.
	if trace && lvl < logrus.DebugLevel {
		lvl = logrus.DebugLevel
	}
	logger := log.L.Logger
	logger.SetLevel(lvl)
	logger.SetOutput(os.Stderr)
	return nil
}

type runOptions struct {
	path  string
	code  []byte
	args  []string
	env   []string
	dirs  []string
	dials []string
	trace bool
}

type runner func(context.Context, wazero.Runtime, *runOptions) (uint32, error)

var runners = map[config.Strings]runner{
	config.UTF8:    runWith[wasi.UTF8],
	config.Bytes:   runWith[wasi.Bytes],
	config.CString: runWith[wasi.CString],
}

func runWith[S wasi.String[S]](ctx context.Context, runtime wazero.Runtime, opts *runOptions) (uint32, error) {
	args, err := makeStrings[S]("argument", append([]string{opts.path}, opts.args...))
	if err != nil {
		return 0, err
	}
	env, err := makeStrings[S]("environment variable", opts.env)
	if err != nil {
		return 0, err
	}

	options := []host.Option[S]{
		host.WithStdio[S](os.Stdin, os.Stdout, os.Stderr),
	}

	for _, dir := range opts.dirs {
		hostPath, guestPath, ok := strings.Cut(dir, ":")
		if !ok {
			guestPath = hostPath
		}
		info, err := os.Stat(hostPath)
		if err != nil {
			return 0, err
		}
		if !info.IsDir() {
			return 0, fmt.Errorf("%s: not a directory", hostPath)
		}
		name, err := makeString[S]("directory name", guestPath)
		if err != nil {
			return 0, err
		}
		options = append(options, host.WithDirectory[S](os.DirFS(hostPath), name))
	}

	for _, addr := range opts.dials {
		conn, err := dial(ctx, addr)
		if err != nil {
			return 0, err
		}
		defer conn.Close()
		options = append(options, host.WithSocket[S](conn))
	}

	system := host.NewSystem[S](args, env, options...)
	defer system.Close(ctx)

	var decorators []abi.Decorator[S]
	if opts.trace {
		decorators = append(decorators, abi.Trace[S]())
	}
	return host.Run(ctx, runtime, filepath.Base(opts.path), opts.code, system, decorators...)
}

func makeString[S wasi.String[S]](what, s string) (S, error) {
	v, err := wasi.StringFromNative[S]([]byte(s))
	if err != nil {
		return v, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return v, nil
}

func makeStrings[S wasi.String[S]](what string, values []string) ([]S, error) {
	strs := make([]S, len(values))
	for i, s := range values {
		v, err := makeString[S](what, s)
		if err != nil {
			return nil, err
		}
		strs[i] = v
	}
	return strs, nil
}

// dial connects to addr, written network:address. Addresses without a known
// network prefix are dialed over tcp.
func dial(ctx context.Context, addr string) (net.Conn, error) {
	network, address, ok := strings.Cut(addr, ":")
	switch network {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6", "unix":
	default:
		network, address, ok = "tcp", addr, true
	}
	if !ok || address == "" {
		return nil, usageError("wasihost run: invalid dial address: %q", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}
