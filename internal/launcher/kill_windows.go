//go:build windows

package launcher

import "os/exec"

func configureCmdSysProcAttr(cmd *exec.Cmd) {}

// killProcess terminates the top-level validator process. Without job
// objects there is no kernel-enforced way to take down grandchildren on
// Windows; callers clean those up separately.
func killProcess(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
