//go:build unix

package streams

import (
	"os"

	"golang.org/x/sys/unix"
)

func checkDescriptor(f *os.File) error {
	if _, err := unix.FcntlInt(f.Fd(), unix.F_GETFD, 0); err != nil {
		return os.NewSyscallError("fcntl", err)
	}
	return nil
}

// Unix terminals take the bytes as they come; there is no code page.
func setConsoleUTF8(files ...*os.File) error {
	return nil
}
