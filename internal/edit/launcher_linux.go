//go:build linux

package edit

import "syscall"

// The editor is terminated when the parent dies while waiting for it.
func editorSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}
}
