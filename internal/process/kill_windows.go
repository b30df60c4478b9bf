//go:build windows

// Package process manages subprocess lifetimes: pandoc runs its PDF engine
// as a child, so a cancelled build has to take down the whole group, not
// just the direct child.
package process

import (
	"os/exec"
	"strconv"
	"syscall"
)

// GroupAttr returns the start attributes for tree-killable children. On
// Windows taskkill handles the tree, so no special attributes are needed.
func GroupAttr() *syscall.SysProcAttr {
	return nil
}

// KillProcessGroup kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
