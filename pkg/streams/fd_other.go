//go:build !unix && !windows

package streams

import (
	"os"
)

func checkDescriptor(f *os.File) error {
	_, err := f.Stat()
	return err
}

func setConsoleUTF8(files ...*os.File) error {
	return nil
}
