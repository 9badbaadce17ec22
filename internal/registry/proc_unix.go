//go:build !windows

package registry

import (
	"os/exec"
	"syscall"
)

// ConfigureCommand places the child in its own process group so a kill
// reaches the engine and anything it spawned.
func ConfigureCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// TerminateCommand force-kills the command's process group, falling back to
// killing the single process when the group cannot be resolved.
func TerminateCommand(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid
	if pid <= 0 {
		return nil
	}
	if pgid, err := syscall.Getpgid(pid); err == nil && pgid > 0 {
		// Negative PGID targets the full process group.
		return syscall.Kill(-pgid, syscall.SIGKILL)
	}
	return cmd.Process.Kill()
}
