package domain

import "context"

// Account is the stored record for a registered user. Friends holds
// usernames and mirrors the friendship graph: u lists v iff v lists u.
type Account struct {
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	Photo        string   `json:"photo"`
	PasswordHash string   `json:"password_hash"`
	Friends      []string `json:"friends"`
}

// Profile is the hash-free view of an Account returned to clients.
type Profile struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Photo    string   `json:"photo"`
	Friends  []string `json:"friends"`
}

func (a Account) Profile() Profile {
	friends := a.Friends
	if friends == nil {
		friends = []string{}
	}
	return Profile{
		Username: a.Username,
		Name:     a.Name,
		Photo:    a.Photo,
		Friends:  friends,
	}
}

// HasFriend reports whether username is in the account's friend list.
func (a Account) HasFriend(username string) bool {
	for _, f := range a.Friends {
		if f == username {
			return true
		}
	}
	return false
}

// Friend is one entry of a get_friends listing.
type Friend struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Photo       string `json:"photo"`
	FriendCount int    `json:"friend_count"`
}

// Suggestion is a friend candidate ranked by mutual friends.
type Suggestion struct {
	Name          string `json:"name"`
	Username      string `json:"username"`
	Photo         string `json:"photo"`
	FriendCount   int    `json:"friend_count"`
	CommonFriends int    `json:"common_friends"`
}

// SearchResult is one entry of a search_user listing.
type SearchResult struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Photo       string `json:"photo"`
	FriendCount int    `json:"friend_count"`
	IsFriend    bool   `json:"is_friend"`
}

// DegreeEntry pairs a username with its degree.
type DegreeEntry struct {
	Username string `json:"username"`
	Degree   int    `json:"degree"`
}

// Stats holds graph-wide degree statistics. Max and Min are nil for an
// empty graph.
type Stats struct {
	Max *DegreeEntry `json:"max"`
	Min *DegreeEntry `json:"min"`
	Avg float64      `json:"avg"`
}

// AccountStore is the durable mapping from username to Account.
// Implementations do not serialize friend-link mutations against each
// other; the usecase layer holds the lock that does.
type AccountStore interface {
	// Get returns the account, or ErrNotFound.
	Get(ctx context.Context, username string) (Account, error)

	// PutNew stores a fresh account, or ErrAlreadyExists.
	PutNew(ctx context.Context, acc Account) error

	// Update applies fn to the stored account and persists the result.
	// Returns ErrNotFound for unknown usernames; any error from fn
	// aborts the update.
	Update(ctx context.Context, username string, fn func(*Account) error) error

	// AddFriendLink records v in u's friend list and u in v's, as one
	// durable step. Idempotent.
	AddFriendLink(ctx context.Context, u, v string) error

	// RemoveFriendLink removes the mutual friend entries. Idempotent.
	RemoveFriendLink(ctx context.Context, u, v string) error

	// All returns every stored account.
	All(ctx context.Context) ([]Account, error)

	Close() error
}
