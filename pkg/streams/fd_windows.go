//go:build windows

package streams

import (
	"os"

	"golang.org/x/sys/windows"
)

const cpUTF8 = 65001

func checkDescriptor(f *os.File) error {
	t, err := windows.GetFileType(windows.Handle(f.Fd()))
	if t == windows.FILE_TYPE_UNKNOWN && err != nil {
		return os.NewSyscallError("GetFileType", err)
	}
	return nil
}

// setConsoleUTF8 switches the console output code page to UTF-8 when any
// of the files is a console. Redirected handles are left alone.
func setConsoleUTF8(files ...*os.File) error {
	for _, f := range files {
		var mode uint32
		if windows.GetConsoleMode(windows.Handle(f.Fd()), &mode) != nil {
			continue
		}
		if err := windows.SetConsoleOutputCP(cpUTF8); err != nil {
			return os.NewSyscallError("SetConsoleOutputCP", err)
		}
		return nil
	}
	return nil
}
