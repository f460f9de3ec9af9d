//go:build !linux

package edit

import "syscall"

func editorSysProcAttr() *syscall.SysProcAttr {
	return nil
}
