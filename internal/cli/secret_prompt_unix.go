//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import (
	"os"

	"golang.org/x/sys/unix"
)

// withEchoDisabled clears ECHO on the terminal for the duration of read and
// restores the previous mode afterwards.
func withEchoDisabled(file *os.File, read func() error) error {
	fd := int(file.Fd())
	state, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return err
	}
	restore := *state
	silent := restore
	silent.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &silent); err != nil {
		return err
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, ioctlSetTermios, &restore)
	}()

	return read()
}
