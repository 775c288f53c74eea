package serialport

import (
	"bytes"
	"io"
)

// LineReader reads newline terminated text from a reader with read timeout.
// A Read returning 0 bytes and no error is treated as a timeout.
type LineReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
}

// NewLineReader creates a LineReader.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r, chunk: make([]byte, 256)}
}

// ReadLine returns the next line including the trailing '\n'.
// If the read times out first, the partial line received so far
// is returned, which may be empty.
func (l *LineReader) ReadLine() (string, error) {
	for {
		if i := bytes.IndexByte(l.buf, '\n'); i >= 0 {
			line := string(l.buf[:i+1])
			l.buf = l.buf[i+1:]
			return line, nil
		}
		n, err := l.r.Read(l.chunk)
		l.buf = append(l.buf, l.chunk[:n]...)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return l.take(), nil
		}
	}
}

// ReadLines returns everything received until a read times out.
func (l *LineReader) ReadLines() (string, error) {
	for {
		n, err := l.r.Read(l.chunk)
		l.buf = append(l.buf, l.chunk[:n]...)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return l.take(), nil
		}
	}
}

// Reset drops buffered data.
func (l *LineReader) Reset() {
	l.buf = l.buf[:0]
}

func (l *LineReader) take() string {
	s := string(l.buf)
	l.buf = l.buf[:0]
	return s
}
