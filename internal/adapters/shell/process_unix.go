//go:build unix

package shell

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// newProcessGroup makes c the leader of a new process group, so that signals
// reach everything a shell line forks.
func newProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func interruptGroup(p *os.Process) error {
	return signalGroup(p, syscall.SIGINT)
}

func killGroup(p *os.Process) error {
	return signalGroup(p, syscall.SIGKILL)
}

// signalGroup signals the process group led by p. Commands started on a
// pseudo-terminal lead their own session, which is also their group.
func signalGroup(p *os.Process, sig syscall.Signal) error {
	err := syscall.Kill(-p.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
