package serialport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkReader returns one chunk per Read, and 0 bytes (timeout) once drained.
type chunkReader struct {
	chunks []string
	err    error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, r.err
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestReadLine(t *testing.T) {
	testCases := []struct {
		name   string
		chunks []string
		lines  []string
	}{
		{"single", []string{"ok\r\n"}, []string{"ok\r\n", ""}},
		{"split", []string{"Hor", "us 0.1\r", "\n"}, []string{"Horus 0.1\r\n", ""}},
		{"two in one chunk", []string{"a\nb\n"}, []string{"a\n", "b\n", ""}},
		{"partial on timeout", []string{"abc"}, []string{"abc", ""}},
		{"nothing", nil, []string{""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lr := NewLineReader(&chunkReader{chunks: tc.chunks})
			for i, expected := range tc.lines {
				line, err := lr.ReadLine()
				require.NoError(t, err)
				require.Equalf(t, expected, line, "line[%d] mismatch", i)
			}
		})
	}
}

func TestReadLines(t *testing.T) {
	lr := NewLineReader(&chunkReader{chunks: []string{"512\r\n", "ok\r\n"}})
	out, err := lr.ReadLines()
	require.NoError(t, err)
	require.Equal(t, "512\r\nok\r\n", out)

	out, err = lr.ReadLines()
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestReadError(t *testing.T) {
	ioErr := errors.New("device gone")
	lr := NewLineReader(&chunkReader{err: ioErr})
	_, err := lr.ReadLine()
	require.Equal(t, ioErr, err)
	_, err = lr.ReadLines()
	require.Equal(t, ioErr, err)
}

func TestReset(t *testing.T) {
	lr := NewLineReader(&chunkReader{chunks: []string{"stale", "fresh\n"}})
	line, err := lr.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "stalefresh\n", line)

	lr = NewLineReader(&chunkReader{chunks: []string{"a\nstale"}})
	line, err = lr.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "a\n", line)
	lr.Reset()
	line, err = lr.ReadLine()
	require.NoError(t, err)
	require.Empty(t, line)
}
