package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextanhongpin/go-social/client"
	"github.com/alextanhongpin/go-social/infra"
	"github.com/alextanhongpin/go-social/pkg/cipher"
	"github.com/alextanhongpin/go-social/pkg/frame"
	"github.com/alextanhongpin/go-social/server"
	"github.com/alextanhongpin/go-social/usecase"
)

func startServer(t *testing.T) (addr string, box *cipher.Cipher) {
	t.Helper()

	key := bytes.Repeat([]byte{0x42}, cipher.KeySize)
	box, err := cipher.New(key)
	require.NoError(t, err)

	store, err := infra.NewBadgerStore(infra.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	social := usecase.NewSocial(store)
	srv := server.New("127.0.0.1:0", box, server.NewDispatcher(social, logger), logger)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return srv.Addr().String(), box
}

func dial(t *testing.T, addr string, box *cipher.Cipher) *client.Client {
	t.Helper()

	c, err := client.Dial(addr, box)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestEndToEnd(t *testing.T) {
	addr, box := startServer(t)
	c := dial(t, addr, box)

	for _, u := range []string{"alice", "bob", "carol"} {
		require.NoError(t, c.Register(u, "pw-"+u, "Name "+u, ""))
	}
	assert.EqualError(t, c.Register("alice", "x", "Alice", ""), "user already exists")

	profile, err := c.Login("alice", "pw-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = c.Login("alice", "nope")
	assert.EqualError(t, err, "invalid credentials")

	require.NoError(t, c.AddFriend("alice", "bob"))
	require.NoError(t, c.AddFriend("bob", "carol"))

	path, err := c.FindPath("alice", "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, path)

	friends, err := c.Friends("bob")
	require.NoError(t, err)
	require.Len(t, friends, 2)

	stats, err := c.Stats()
	require.NoError(t, err)
	require.NotNil(t, stats.Max)
	assert.Equal(t, "bob", stats.Max.Username)
	assert.Equal(t, 2, stats.Max.Degree)
	assert.InDelta(t, 4.0/3.0, stats.Avg, 1e-9)

	suggestions, err := c.Suggestions("alice")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "carol", suggestions[0].Username)
	assert.Equal(t, 1, suggestions[0].CommonFriends)

	users, err := c.Search("name", "alice")
	require.NoError(t, err)
	require.Len(t, users, 2, "search excludes the searcher")

	require.NoError(t, c.RemoveFriend("alice", "bob"))
	_, err = c.FindPath("alice", "carol")
	assert.EqualError(t, err, "no path found")
}

func TestSessionOrdering(t *testing.T) {
	addr, box := startServer(t)
	c := dial(t, addr, box)

	// Requests on one connection are answered strictly in order; a
	// pipelined burst of dependent mutations lands consistently.
	require.NoError(t, c.Register("alice", "pw", "Alice", ""))
	require.NoError(t, c.Register("bob", "pw", "Bob", ""))
	for i := 0; i < 10; i++ {
		require.NoError(t, c.AddFriend("alice", "bob"))
		require.NoError(t, c.RemoveFriend("alice", "bob"))
	}

	friends, err := c.Friends("alice")
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestConcurrentClients(t *testing.T) {
	addr, box := startServer(t)

	setup := dial(t, addr, box)
	for _, u := range []string{"u0", "u1", "u2", "u3", "u4", "u5"} {
		require.NoError(t, setup.Register(u, "pw", "User "+u, ""))
	}

	done := make(chan error, 3)
	for i := 0; i < 3; i++ {
		u1, u2 := []string{"u0", "u2", "u4"}[i], []string{"u1", "u3", "u5"}[i]
		go func() {
			c, err := client.Dial(addr, box)
			if err != nil {
				done <- err
				return
			}
			defer c.Close()

			for n := 0; n < 10; n++ {
				if err := c.AddFriend(u1, u2); err != nil {
					done <- err
					return
				}
				if err := c.RemoveFriend(u1, u2); err != nil {
					done <- err
					return
				}
			}
			done <- c.AddFriend(u1, u2)
		}()
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, <-done)
	}

	check := dial(t, addr, box)
	for _, pair := range [][2]string{{"u0", "u1"}, {"u2", "u3"}, {"u4", "u5"}} {
		path, err := check.FindPath(pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, []string{pair[0], pair[1]}, path)
	}
}

func TestBadCiphertextKeepsSessionOpen(t *testing.T) {
	addr, box := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// A frame that is valid at the transport level but not decryptable.
	require.NoError(t, frame.Write(conn, []byte("this is not ciphertext")))

	res := readResponse(t, conn, box)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "unable to decrypt message", res.Message)

	// The session survives: a well-formed request on the same
	// connection still succeeds.
	payload, err := box.Encrypt([]byte(`{"action":"get_stats"}`))
	require.NoError(t, err)
	require.NoError(t, frame.Write(conn, payload))

	res = readResponse(t, conn, box)
	assert.Equal(t, "success", res.Status)
}

func TestMalformedJSONKeepsSessionOpen(t *testing.T) {
	addr, box := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	payload, err := box.Encrypt([]byte(`{{{`))
	require.NoError(t, err)
	require.NoError(t, frame.Write(conn, payload))

	res := readResponse(t, conn, box)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "invalid request", res.Message)

	payload, err = box.Encrypt([]byte(`{"action":"get_stats"}`))
	require.NoError(t, err)
	require.NoError(t, frame.Write(conn, payload))

	res = readResponse(t, conn, box)
	assert.Equal(t, "success", res.Status)
}

func TestTruncatedFrameClosesSession(t *testing.T) {
	addr, box := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// Claim a 100-byte body but deliver only 3, then half-close so the
	// server sees the truncation.
	_, err = conn.Write([]byte{0, 0, 0, 100, 'a', 'b', 'c'})
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	res := readResponse(t, conn, box)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "incomplete message received", res.Message)

	// The server tears the connection down after reporting.
	_, err = frame.Read(conn)
	assert.ErrorIs(t, err, io.EOF)
}

func readResponse(t *testing.T, conn net.Conn, box *cipher.Cipher) server.Status {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	body, err := frame.Read(conn)
	require.NoError(t, err)
	plaintext, err := box.Decrypt(body)
	require.NoError(t, err)

	var res server.Status
	require.NoError(t, json.Unmarshal(plaintext, &res))
	return res
}
