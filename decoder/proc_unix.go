//go:build unix

package decoder

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the decoder in its own group so a timeout kills
// any children it spawned as well.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
