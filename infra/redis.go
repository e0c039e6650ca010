package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/alextanhongpin/go-social/domain"
)

func NewRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisStore is an AccountStore backed by a redis server, selected with
// --store=redis. Read-modify-write sequences here are not atomic on
// their own; the usecase lock serializes them.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Get(ctx context.Context, username string) (domain.Account, error) {
	var acc domain.Account
	b, err := s.rdb.Get(ctx, accountPrefix+username).Bytes()
	if errors.Is(err, redis.Nil) {
		return acc, domain.ErrNotFound
	}
	if err != nil {
		return acc, err
	}
	err = json.Unmarshal(b, &acc)
	return acc, err
}

func (s *RedisStore) PutNew(ctx context.Context, acc domain.Account) error {
	b, err := json.Marshal(acc)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, accountPrefix+acc.Username, b, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (s *RedisStore) set(ctx context.Context, acc domain.Account) error {
	b, err := json.Marshal(acc)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, accountPrefix+acc.Username, b, 0).Err()
}

func (s *RedisStore) Update(ctx context.Context, username string, fn func(*domain.Account) error) error {
	acc, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := fn(&acc); err != nil {
		return err
	}
	return s.set(ctx, acc)
}

func (s *RedisStore) AddFriendLink(ctx context.Context, u, v string) error {
	return s.mutatePair(ctx, u, v, func(acc *domain.Account, other string) {
		if !acc.HasFriend(other) {
			acc.Friends = append(acc.Friends, other)
		}
	})
}

func (s *RedisStore) RemoveFriendLink(ctx context.Context, u, v string) error {
	return s.mutatePair(ctx, u, v, func(acc *domain.Account, other string) {
		for i, f := range acc.Friends {
			if f == other {
				acc.Friends = append(acc.Friends[:i], acc.Friends[i+1:]...)
				return
			}
		}
	})
}

func (s *RedisStore) mutatePair(ctx context.Context, u, v string, mutate func(acc *domain.Account, other string)) error {
	ua, err := s.Get(ctx, u)
	if err != nil {
		return err
	}
	va, err := s.Get(ctx, v)
	if err != nil {
		return err
	}
	mutate(&ua, v)
	mutate(&va, u)
	if err := s.set(ctx, ua); err != nil {
		return err
	}
	return s.set(ctx, va)
}

func (s *RedisStore) All(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, accountPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			b, err := s.rdb.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return nil, err
			}
			var acc domain.Account
			if err := json.Unmarshal(b, &acc); err != nil {
				return nil, err
			}
			accounts = append(accounts, acc)
		}
		cursor = next
		if cursor == 0 {
			return accounts, nil
		}
	}
}
