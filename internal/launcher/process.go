package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

type processLauncher struct{}

// NewProcess constructs a launcher that runs the validator as a local child
// process.
func NewProcess() Launcher {
	return &processLauncher{}
}

func (l *processLauncher) Start(ctx context.Context, spec StartSpec) (Handle, error) {
	args := []string{"start"}
	if spec.ConfigPath != "" {
		args = append(args, spec.ConfigPath)
	}

	cmd := exec.Command(Executable(), args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if _, dump := os.LookupEnv(EnvDump); dump {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	configureCmdSysProcAttr(cmd)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", Executable(), err)
	}

	return &processHandle{cmd: cmd}, nil
}

func (l *processLauncher) StopExternal(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, Executable(), "stop")
	if _, dump := os.LookupEnv(EnvDump); dump {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s stop: %w", Executable(), err)
	}
	return nil
}

type processHandle struct {
	cmd *exec.Cmd
}

func (h *processHandle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

func (h *processHandle) Kill(ctx context.Context) error {
	if h.cmd.Process == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := killProcess(h.cmd); err != nil {
		return fmt.Errorf("kill validator pid %d: %w", h.cmd.Process.Pid, err)
	}

	var exitErr *exec.ExitError
	if err := h.cmd.Wait(); err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("wait for validator pid %d: %w", h.cmd.Process.Pid, err)
	}
	return nil
}
