// Package launcher spawns and terminates the amman validator. Two backends
// exist: a local process backend and a docker backend. Both expose the same
// narrow surface — spawn a validator, hold a handle that can terminate and
// reap it, and run the out-of-band stop command for validators this harness
// does not own.
package launcher

import (
	"context"
	"os"
)

const (
	// EnvExecutable overrides the validator executable name.
	EnvExecutable = "AMMAN_EXECUTABLE"
	// EnvDump, when set, passes the validator's stdout/stderr through
	// instead of discarding them.
	EnvDump = "DUMP_AMMAN"

	defaultExecutable = "amman"
)

// Executable resolves the validator executable name from the environment.
func Executable() string {
	if exe := os.Getenv(EnvExecutable); exe != "" {
		return exe
	}
	return defaultExecutable
}

// StartSpec describes a single validator launch.
type StartSpec struct {
	// Dir is the working directory for the launch, the fixtures root.
	Dir string
	// ConfigPath, when non-empty, is passed to the start subcommand. The
	// file must outlive the Start call; the validator reads it at startup.
	ConfigPath string
	// Ports are the well-known ports the validator binds. The docker
	// backend publishes them; the process backend ignores them.
	Ports []int
}

// Handle is an exclusively owned reference to a validator spawned by this
// harness. Only the instance that performed the spawn holds one.
type Handle interface {
	// Pid returns the operating system pid of the spawned validator, or 0
	// when the backend cannot determine one.
	Pid() int

	// Kill forcibly terminates the validator and reaps it. It returns once
	// the process is gone; a validator that already exited is not an error.
	Kill(ctx context.Context) error
}

// Launcher spawns validators and drives the external stop mechanism.
type Launcher interface {
	// Start spawns the validator. It returns as soon as the spawn itself
	// succeeds; readiness is the caller's concern.
	Start(ctx context.Context, spec StartSpec) (Handle, error)

	// StopExternal triggers the out-of-band stop mechanism for a validator
	// this harness did not spawn, and waits for the mechanism to finish.
	// Completion of the stop mechanism does not imply the validator has
	// fully shut down.
	StopExternal(ctx context.Context) error
}
