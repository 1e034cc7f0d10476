package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "railbot:search:"

// Store caches upstream search payloads for a short TTL so page turns and
// refinements within one conversation (or repeated queries across
// conversations) do not hammer the ticket API. Redis failures are logged
// and treated as cache misses; the cache must never break a query.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func New(addr, password string, db int, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Store{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl: ttl,
		log: log,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("search cache get failed", zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

func (s *Store) Set(ctx context.Context, key string, val []byte) {
	if err := s.rdb.Set(ctx, keyPrefix+key, val, s.ttl).Err(); err != nil {
		s.log.Warn("search cache set failed", zap.Error(err))
	}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
