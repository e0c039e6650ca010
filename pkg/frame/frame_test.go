package frame_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextanhongpin/go-social/pkg/frame"
)

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"action":"get_stats"}`),
		{},
		bytes.Repeat([]byte{0xab}, 100_000),
	}

	var buf bytes.Buffer
	for _, p := range payloads {
		require.NoError(t, frame.Write(&buf, p))
	}
	for _, want := range payloads {
		got, err := frame.Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := frame.Read(&buf)
	assert.ErrorIs(t, err, io.EOF, "drained stream reads EOF")
}

func TestWireLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, frame.Write(&buf, []byte("hi")))

	// 4-byte big-endian length, then the body.
	assert.Equal(t, []byte{0, 0, 0, 2, 'h', 'i'}, buf.Bytes())
}

func TestReadCleanClose(t *testing.T) {
	_, err := frame.Read(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadTruncatedPrefix(t *testing.T) {
	_, err := frame.Read(bytes.NewReader([]byte{0, 0}))
	assert.ErrorIs(t, err, frame.ErrTruncated)
}

func TestReadTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, frame.Write(&buf, []byte("hello world")))

	// Drop the tail of the body.
	short := buf.Bytes()[:buf.Len()-4]
	_, err := frame.Read(bytes.NewReader(short))
	assert.ErrorIs(t, err, frame.ErrTruncated)
}

func TestReadTooLarge(t *testing.T) {
	_, err := frame.Read(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	assert.ErrorIs(t, err, frame.ErrTooLarge)
}

func TestWriteTooLarge(t *testing.T) {
	err := frame.Write(io.Discard, make([]byte, frame.MaxLength+1))
	assert.ErrorIs(t, err, frame.ErrTooLarge)
}
