package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/containerd/log"
	"github.com/google/uuid"
	"github.com/stealthrocket/wasihost/internal/abi"
	"github.com/stealthrocket/wasihost/internal/wasi"
	"github.com/stealthrocket/wazergo"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
)

// Run compiles the guest program and calls its _start function with system
// providing the WASI functions. The program may be compressed.
//
// The returned exit code is zero when _start returns, or the code passed to
// proc_exit. Any other way for the guest to stop, such as a trap or a memory
// fault in a host function, is returned as an error.
func Run[S wasi.String[S]](ctx context.Context, runtime wazero.Runtime, name string, code []byte, system *System[S], decorators ...abi.Decorator[S]) (uint32, error) {
	compression := DetectCompression(name, code)
	code, err := Decompress(code, compression)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	compiledModule, err := runtime.CompileModule(ctx, code)
	if err != nil {
		return 0, err
	}
	defer compiledModule.Close(ctx)

	instanceID := uuid.NewString()
	ctx = log.WithLogger(ctx, log.G(ctx).WithFields(log.Fields{
		"module":   name,
		"instance": instanceID,
	}))
	log.G(ctx).WithField("compression", compression.String()).Debug("starting guest")

	hostModule := abi.HostModule[S](decorators...)
	hostModuleInstance := wazergo.MustInstantiate(ctx, runtime, hostModule, abi.WithImports[S](system))
	defer hostModuleInstance.Close(ctx)
	ctx = wazergo.WithModuleInstance(ctx, hostModuleInstance)

	module, err := runtime.InstantiateModule(ctx, compiledModule, wazero.NewModuleConfig().
		WithName(instanceID).
		WithStartFunctions())
	if err != nil {
		return 0, err
	}
	defer module.Close(ctx)

	start := module.ExportedFunction("_start")
	if start == nil {
		return 0, fmt.Errorf("%s: the module does not export a _start function", name)
	}
	_, err = start.Call(ctx)

	exitCode, err := exitStatus(err)
	if err == nil {
		log.G(ctx).WithField("exit_code", exitCode).Debug("guest exited")
	}
	return exitCode, err
}

func exitStatus(err error) (uint32, error) {
	var exitError *sys.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitError):
		return exitError.ExitCode(), nil
	default:
		return 0, err
	}
}
