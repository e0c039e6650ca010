// Package server implements the TCP listener, the per-connection session
// protocol and the request dispatcher for the social-graph service.
//
// Wire protocol, both directions: a 4-byte big-endian ciphertext length
// followed by the ciphertext, which decrypts to one JSON object. Every
// request carries an "action" tag; every response carries a "status".
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/alextanhongpin/go-social/pkg/cipher"
)

type Server struct {
	addr       string
	cipher     *cipher.Cipher
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	listener net.Listener
	wg       sync.WaitGroup
}

func New(addr string, c *cipher.Cipher, d *Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:       addr,
		cipher:     c,
		dispatcher: d,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Listen binds the TCP address. Call before Serve; Addr is valid after.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln
	s.logger.Info("listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is done or the listener is closed,
// spawning one session goroutine per connection. The accept loop does no
// per-connection work.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		s.register(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.deregister(conn)

			openSessions.Inc()
			defer openSessions.Dec()

			sess := NewSession(conn, s.cipher, s.dispatcher, s.logger)
			sess.Serve(ctx)
		}()
	}

	s.wg.Wait()
	return nil
}

// Close stops accepting, closes live connections and waits for their
// sessions to finish.
func (s *Server) Close() error {
	s.shutdown()
	s.wg.Wait()
	return nil
}

func (s *Server) shutdown() {
	s.listener.Close()

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
}

func (s *Server) register(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) deregister(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}
