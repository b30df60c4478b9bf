//go:build !windows

// Package process manages subprocess lifetimes: pandoc runs its PDF engine
// as a child, so a cancelled build has to take down the whole group, not
// just the direct child.
package process

import "syscall"

// GroupAttr returns the start attributes placing the child in its own
// process group so the group can be killed as a unit.
func GroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID). Best effort; the caller still kills
// the direct child as a fallback.
func KillProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
