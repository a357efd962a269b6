package proc

import (
	"bufio"
	"io"

	"github.com/floofdev/floof/internal/mutex"
)

// newLineWriter wraps w so that output is forwarded a line at a time. Writes
// accumulate in a fixed-size buffer that is flushed on every newline, so a
// chatty process never buffers unbounded output.
func newLineWriter(w io.Writer) io.Writer {
	return &lineWriter{
		buf: bufio.NewWriter(w),
		mu:  mutex.New("linewriter"),
	}
}

type lineWriter struct {
	buf *bufio.Writer
	mu  *mutex.Mutex
}

func (w *lineWriter) Write(bs []byte) (n int, err error) {
	w.mu.Lock("Write")
	defer w.mu.Unlock()

	for _, b := range bs {
		if err = w.buf.WriteByte(b); err != nil {
			return n, err
		}
		n++
		if b == '\n' {
			w.buf.Flush()
		}
	}
	return n, err
}
