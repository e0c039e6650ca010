package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/alextanhongpin/go-social/domain"
)

const accountPrefix = "account:"

// BadgerStore is the default AccountStore: accounts as JSON values in an
// embedded badger database, one key per username.
type BadgerStore struct {
	db *badger.DB
}

// BadgerConfig holds the knobs for opening the store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory skips disk persistence. Useful for tests.
	InMemory bool

	// Logger receives badger's internal logs. Nil disables them.
	Logger *slog.Logger
}

// NewBadgerStore opens (creating if needed) the account database.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).WithInMemory(cfg.InMemory)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", cfg.Path, err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func accountKey(username string) []byte {
	return []byte(accountPrefix + username)
}

func (s *BadgerStore) Get(ctx context.Context, username string) (domain.Account, error) {
	var acc domain.Account
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		acc, err = getAccount(txn, username)
		return err
	})
	return acc, err
}

func (s *BadgerStore) PutNew(ctx context.Context, acc domain.Account) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := accountKey(acc.Username)
		if _, err := txn.Get(key); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setAccount(txn, acc)
	})
}

func (s *BadgerStore) Update(ctx context.Context, username string, fn func(*domain.Account) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		acc, err := getAccount(txn, username)
		if err != nil {
			return err
		}
		if err := fn(&acc); err != nil {
			return err
		}
		return setAccount(txn, acc)
	})
}

// AddFriendLink writes both sides of the friendship in one transaction so
// a crash never leaves a half-linked pair on disk.
func (s *BadgerStore) AddFriendLink(ctx context.Context, u, v string) error {
	return s.mutatePair(u, v, func(acc *domain.Account, other string) {
		if !acc.HasFriend(other) {
			acc.Friends = append(acc.Friends, other)
		}
	})
}

func (s *BadgerStore) RemoveFriendLink(ctx context.Context, u, v string) error {
	return s.mutatePair(u, v, func(acc *domain.Account, other string) {
		for i, f := range acc.Friends {
			if f == other {
				acc.Friends = append(acc.Friends[:i], acc.Friends[i+1:]...)
				return
			}
		}
	})
}

func (s *BadgerStore) mutatePair(u, v string, mutate func(acc *domain.Account, other string)) error {
	return s.db.Update(func(txn *badger.Txn) error {
		ua, err := getAccount(txn, u)
		if err != nil {
			return err
		}
		va, err := getAccount(txn, v)
		if err != nil {
			return err
		}
		mutate(&ua, v)
		mutate(&va, u)
		if err := setAccount(txn, ua); err != nil {
			return err
		}
		return setAccount(txn, va)
	})
}

func (s *BadgerStore) All(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(accountPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var acc domain.Account
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &acc)
			})
			if err != nil {
				return err
			}
			accounts = append(accounts, acc)
		}
		return nil
	})
	return accounts, err
}

func getAccount(txn *badger.Txn, username string) (domain.Account, error) {
	var acc domain.Account
	item, err := txn.Get(accountKey(username))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return acc, domain.ErrNotFound
	}
	if err != nil {
		return acc, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &acc)
	})
	return acc, err
}

func setAccount(txn *badger.Txn, acc domain.Account) error {
	b, err := json.Marshal(acc)
	if err != nil {
		return err
	}
	return txn.Set(accountKey(acc.Username), b)
}

// badgerLogger adapts slog to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
