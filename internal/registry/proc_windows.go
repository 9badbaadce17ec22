//go:build windows

package registry

import "os/exec"

// ConfigureCommand is a no-op on Windows; there are no process groups to set up.
func ConfigureCommand(cmd *exec.Cmd) {}

// TerminateCommand kills the command's process.
func TerminateCommand(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
