// Package frame implements the wire framing: every message is a 4-byte
// big-endian length followed by exactly that many payload bytes.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxLength caps a single frame body. Anything larger is treated as a
// corrupt stream rather than buffered.
const MaxLength = 16 << 20

var (
	// ErrTruncated means the peer closed mid-frame.
	ErrTruncated = errors.New("frame: truncated")

	// ErrTooLarge means the length prefix exceeds MaxLength.
	ErrTooLarge = errors.New("frame: too large")
)

// Read reads one frame body from r. It returns io.EOF only when the
// stream ends cleanly before the first length byte; a stream that ends
// inside the prefix or the body yields ErrTruncated.
func Read(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("frame: read length: %w", err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length > MaxLength {
		return nil, ErrTooLarge
	}
	if length == 0 {
		return []byte{}, nil
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("frame: read body: %w", err)
	}
	return body, nil
}

// Write writes payload to w as one frame. io.Writer already guarantees
// full writes on nil error, so a single Write per part suffices.
func Write(w io.Writer, payload []byte) error {
	if len(payload) > MaxLength {
		return ErrTooLarge
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("frame: write length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("frame: write body: %w", err)
	}
	return nil
}
