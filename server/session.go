package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/alextanhongpin/go-social/pkg/cipher"
	"github.com/alextanhongpin/go-social/pkg/frame"
)

// writeWait bounds a single response write so a stalled peer cannot pin
// the session goroutine forever.
const writeWait = 10 * time.Second

// Session owns one client connection and runs its read-dispatch-write
// loop. Requests are handled strictly in arrival order.
type Session struct {
	id         string
	conn       net.Conn
	cipher     *cipher.Cipher
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewSession(conn net.Conn, c *cipher.Cipher, d *Dispatcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Session{
		id:         id,
		conn:       conn,
		cipher:     c,
		dispatcher: d,
		logger:     logger.With("session_id", id, "remote", conn.RemoteAddr().String()),
	}
}

// Serve runs the session loop until the peer disconnects or a transport
// error ends the stream. Malformed single messages (bad ciphertext,
// invalid JSON) are answered in-band and do not end the session.
func (s *Session) Serve(ctx context.Context) error {
	defer s.conn.Close()

	s.logger.Info("session started")

	for {
		payload, err := frame.Read(s.conn)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.logger.Info("peer disconnected")
			return nil
		case errors.Is(err, net.ErrClosed):
			// Server shutdown closed the connection under us.
			return nil
		case errors.Is(err, frame.ErrTruncated), errors.Is(err, frame.ErrTooLarge):
			// The stream is corrupt past recovery. Tell the peer if the
			// socket still accepts writes, then tear down.
			transportErrors.Inc()
			s.sendError("incomplete message received")
			s.logger.Warn("session closed", "error", err)
			return err
		default:
			transportErrors.Inc()
			s.logger.Warn("read failed", "error", err)
			return err
		}

		plaintext, err := s.cipher.Decrypt(payload)
		if err != nil {
			if err := s.sendError("unable to decrypt message"); err != nil {
				return err
			}
			continue
		}

		res := s.dispatcher.Dispatch(ctx, plaintext)
		if err := s.send(res); err != nil {
			s.logger.Warn("write failed", "error", err)
			return err
		}
	}
}

func (s *Session) send(res any) error {
	plaintext, err := json.Marshal(res)
	if err != nil {
		return err
	}
	ciphertext, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return err
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	defer s.conn.SetWriteDeadline(time.Time{})
	return frame.Write(s.conn, ciphertext)
}

func (s *Session) sendError(msg string) error {
	return s.send(Error(msg))
}
