// pkg/testutil/capture.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Real file descriptors for stream tests

package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// Capture is a pipe whose read side is drained into memory. Writes to W
// never block on a full pipe buffer.
type Capture struct {
	W *os.File

	r    *os.File
	buf  bytes.Buffer
	done chan struct{}
}

// NewCapture creates a Capture. The pipe is closed at test cleanup if
// Bytes was never called.
func NewCapture(t *testing.T) *Capture {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	c := &Capture{W: w, r: r, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		_, _ = io.Copy(&c.buf, r)
	}()

	t.Cleanup(func() {
		_ = c.W.Close()
		<-c.done
		_ = c.r.Close()
	})
	return c
}

// Bytes closes the write side and returns everything written to it.
func (c *Capture) Bytes() []byte {
	_ = c.W.Close()
	<-c.done
	return c.buf.Bytes()
}

// String is Bytes as a string.
func (c *Capture) String() string {
	return string(c.Bytes())
}

// ClosedFile returns an *os.File whose descriptor has already been closed.
func ClosedFile(t *testing.T) *os.File {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	_ = r.Close()
	_ = w.Close()
	return w
}
