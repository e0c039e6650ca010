package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alextanhongpin/go-social/domain"
	"github.com/alextanhongpin/go-social/pkg/graph"
	"github.com/alextanhongpin/go-social/pkg/password"
)

// SuggestionLimit caps the number of friend suggestions per request.
const SuggestionLimit = 10

var ErrSelfFriendship = errors.New("cannot befriend yourself")

// Social owns the friendship graph and the account store behind one
// lock. The graph is a cache of the store's friend lists; every mutation
// applies to both under the write lock so no session observes one side
// without the other. The store is written first: it is the source of
// truth, and the in-memory graph update after it cannot fail.
type Social struct {
	mu    sync.RWMutex
	graph *graph.Graph
	store domain.AccountStore
}

func NewSocial(store domain.AccountStore) *Social {
	return &Social{
		graph: graph.New(),
		store: store,
	}
}

// Load rebuilds the graph from the store. Call once before serving.
func (s *Social) Load(ctx context.Context) error {
	accounts, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range accounts {
		s.graph.AddNode(acc.Username)
	}
	for _, acc := range accounts {
		for _, friend := range acc.Friends {
			s.graph.AddEdge(acc.Username, friend)
		}
	}
	return nil
}

// Register creates the account and its isolated graph node.
func (s *Social) Register(ctx context.Context, username, plainPassword, name, photo string) error {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := domain.Account{
		Username:     username,
		Name:         name,
		Photo:        photo,
		PasswordHash: hash,
		Friends:      []string{},
	}
	if err := s.store.PutNew(ctx, acc); err != nil {
		return err
	}
	s.graph.AddNode(username)
	return nil
}

// Login verifies the credentials and returns the account profile. An
// unknown username and a wrong password are indistinguishable to the
// caller.
func (s *Social) Login(ctx context.Context, username, plainPassword string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Profile{}, domain.ErrInvalidCredentials
		}
		return domain.Profile{}, err
	}
	if !password.Verify(plainPassword, acc.PasswordHash) {
		return domain.Profile{}, domain.ErrInvalidCredentials
	}
	return acc.Profile(), nil
}

// UpdateProfile replaces the display name when name is non-empty and the
// photo when photo is non-nil.
func (s *Social) UpdateProfile(ctx context.Context, username, name string, photo *string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated domain.Account
	err := s.store.Update(ctx, username, func(acc *domain.Account) error {
		if name != "" {
			acc.Name = name
		}
		if photo != nil {
			acc.Photo = *photo
		}
		updated = *acc
		return nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return updated.Profile(), nil
}

// ChangePassword verifies the old password and stores a new hash.
func (s *Social) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Update(ctx, username, func(acc *domain.Account) error {
		if !password.Verify(oldPassword, acc.PasswordHash) {
			return domain.ErrInvalidCredentials
		}
		acc.PasswordHash = hash
		return nil
	})
}

// AddFriend links two existing users. Linking an already-linked pair is
// a no-op success.
func (s *Social) AddFriend(ctx context.Context, user1, user2 string) error {
	if user1 == user2 {
		return ErrSelfFriendship
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasNode(user1) || !s.graph.HasNode(user2) {
		return domain.ErrNotFound
	}
	if s.graph.HasEdge(user1, user2) {
		return nil
	}
	if err := s.store.AddFriendLink(ctx, user1, user2); err != nil {
		return err
	}
	s.graph.AddEdge(user1, user2)
	return nil
}

// RemoveFriend unlinks two users. A missing edge reports ErrNotFriends
// and leaves the store untouched.
func (s *Social) RemoveFriend(ctx context.Context, user1, user2 string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasEdge(user1, user2) {
		return domain.ErrNotFriends
	}
	if err := s.store.RemoveFriendLink(ctx, user1, user2); err != nil {
		return err
	}
	s.graph.RemoveEdge(user1, user2)
	return nil
}

// Friends lists the user's friends annotated with their own friend
// counts.
func (s *Social) Friends(ctx context.Context, username string) ([]domain.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, err := s.store.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	friends := make([]domain.Friend, 0, len(acc.Friends))
	for _, name := range acc.Friends {
		fa, err := s.store.Get(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		friends = append(friends, domain.Friend{
			Name:        fa.Name,
			Username:    fa.Username,
			Photo:       fa.Photo,
			FriendCount: len(fa.Friends),
		})
	}
	return friends, nil
}

// FindPath returns the shortest friend chain from start to end, both
// inclusive.
func (s *Social) FindPath(ctx context.Context, start, end string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.graph.ShortestPath(start, end)
	if !ok {
		return nil, domain.ErrNoPath
	}
	return path, nil
}

// Suggestions ranks friends-of-friends by mutual friend count.
func (s *Social) Suggestions(ctx context.Context, username string) ([]domain.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.store.Get(ctx, username); err != nil {
		return nil, err
	}

	candidates := s.graph.Suggestions(username, SuggestionLimit)
	suggestions := make([]domain.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		acc, err := s.store.Get(ctx, c.Username)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		suggestions = append(suggestions, domain.Suggestion{
			Name:          acc.Name,
			Username:      acc.Username,
			Photo:         acc.Photo,
			FriendCount:   len(acc.Friends),
			CommonFriends: c.Common,
		})
	}
	return suggestions, nil
}

// Search matches query case-insensitively against usernames and display
// names, excluding currentUser.
func (s *Social) Search(ctx context.Context, query, currentUser string) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	var current domain.Account
	if currentUser != "" {
		current, err = s.store.Get(ctx, currentUser)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	query = strings.ToLower(query)
	results := make([]domain.SearchResult, 0)
	for _, acc := range accounts {
		if acc.Username == currentUser {
			continue
		}
		if !strings.Contains(strings.ToLower(acc.Username), query) &&
			!strings.Contains(strings.ToLower(acc.Name), query) {
			continue
		}
		results = append(results, domain.SearchResult{
			Name:        acc.Name,
			Username:    acc.Username,
			Photo:       acc.Photo,
			FriendCount: len(acc.Friends),
			IsFriend:    current.HasFriend(acc.Username),
		})
	}
	return results, nil
}

// Stats returns graph-wide degree statistics. Max and Min are nil when
// no users are registered.
func (s *Social) Stats(ctx context.Context) domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.graph.Stats()
	if !ok {
		return domain.Stats{}
	}
	return domain.Stats{
		Max: &domain.DegreeEntry{Username: ds.MaxUser, Degree: ds.Max},
		Min: &domain.DegreeEntry{Username: ds.MinUser, Degree: ds.Min},
		Avg: ds.Avg,
	}
}
