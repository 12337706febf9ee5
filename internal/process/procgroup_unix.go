//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the helper in a new process group and makes
// context cancellation kill the group, so helpers that fork do not leave
// orphans behind.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// With Setpgid the group id equals the child's pid
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}
