// Package client speaks the framed, encrypted request/response protocol
// from the client side. One Client maps to one server connection;
// requests on it are serialized, matching the server's in-order
// processing per connection.
package client

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/alextanhongpin/go-social/domain"
	"github.com/alextanhongpin/go-social/pkg/cipher"
	"github.com/alextanhongpin/go-social/pkg/frame"
	"github.com/alextanhongpin/go-social/server"
)

type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	cipher *cipher.Cipher
}

// Dial connects to addr using the shared-secret cipher.
func Dial(addr string, c *cipher.Cipher) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, cipher: c}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Do performs one request/response round trip: req is serialized,
// encrypted and framed; the response is read back into out.
func (c *Client) Do(req, out any) error {
	plaintext, err := json.Marshal(req)
	if err != nil {
		return err
	}
	ciphertext, err := c.cipher.Encrypt(plaintext)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := frame.Write(c.conn, ciphertext); err != nil {
		return err
	}
	body, err := frame.Read(c.conn)
	if err != nil {
		return err
	}
	plaintext, err = c.cipher.Decrypt(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, out)
}

func (c *Client) Login(username, password string) (domain.Profile, error) {
	var res server.LoginResponse
	err := c.Do(server.LoginRequest{
		Action:   server.ActionLogin,
		Username: username,
		Password: password,
	}, &res)
	if err != nil {
		return domain.Profile{}, err
	}
	return res.UserData, res.Err()
}

func (c *Client) Register(username, password, name, photo string) error {
	var res server.Status
	err := c.Do(server.RegisterRequest{
		Action:   server.ActionRegister,
		Username: username,
		Password: password,
		Name:     name,
		Photo:    photo,
	}, &res)
	if err != nil {
		return err
	}
	return res.Err()
}

// UpdateProfile sets a new display name and/or photo. An empty name
// keeps the current one; a nil photo keeps the current photo.
func (c *Client) UpdateProfile(username, name string, photo *string) (domain.Profile, error) {
	var res server.ProfileResponse
	err := c.Do(server.UpdateProfileRequest{
		Action:   server.ActionUpdateProfile,
		Username: username,
		Name:     name,
		Photo:    photo,
	}, &res)
	if err != nil {
		return domain.Profile{}, err
	}
	return res.UserData, res.Err()
}

func (c *Client) ChangePassword(username, oldPassword, newPassword string) error {
	var res server.Status
	err := c.Do(server.ChangePasswordRequest{
		Action:      server.ActionChangePassword,
		Username:    username,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, &res)
	if err != nil {
		return err
	}
	return res.Err()
}

func (c *Client) AddFriend(user1, user2 string) error {
	return c.friendPair(server.ActionAddFriend, user1, user2)
}

func (c *Client) RemoveFriend(user1, user2 string) error {
	return c.friendPair(server.ActionRemoveFriend, user1, user2)
}

func (c *Client) friendPair(action, user1, user2 string) error {
	var res server.Status
	err := c.Do(server.FriendPairRequest{
		Action: action,
		User1:  user1,
		User2:  user2,
	}, &res)
	if err != nil {
		return err
	}
	return res.Err()
}

func (c *Client) Friends(username string) ([]domain.Friend, error) {
	var res server.FriendsResponse
	err := c.Do(server.UsernameRequest{
		Action:   server.ActionGetFriends,
		Username: username,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Friends, res.Err()
}

func (c *Client) FindPath(start, end string) ([]string, error) {
	var res server.PathResponse
	err := c.Do(server.FindPathRequest{
		Action: server.ActionFindPath,
		Start:  start,
		End:    end,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Path, res.Err()
}

func (c *Client) Suggestions(username string) ([]domain.Suggestion, error) {
	var res server.SuggestionsResponse
	err := c.Do(server.UsernameRequest{
		Action:   server.ActionGetSuggestions,
		Username: username,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Suggestions, res.Err()
}

func (c *Client) Search(query, currentUser string) ([]domain.SearchResult, error) {
	var res server.UsersResponse
	err := c.Do(server.SearchRequest{
		Action:      server.ActionSearchUser,
		Query:       query,
		CurrentUser: currentUser,
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Users, res.Err()
}

func (c *Client) Stats() (domain.Stats, error) {
	var res server.StatsResponse
	err := c.Do(server.StatsRequest{Action: server.ActionGetStats}, &res)
	if err != nil {
		return domain.Stats{}, err
	}
	return res.Stats, res.Err()
}
