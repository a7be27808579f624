package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/souqra/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces session and lock keys.
const DefaultPrefix = "souqra:session:"

// noExpiry is the index score of sessions stored without a TTL (2100-01-01).
const noExpiry = 4102444800

// Store implements ports.StateStore using Redis.
// Each session is a JSON string; a sorted set indexes the IDs by expiry so
// List can prune sessions that Redis already expired.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL expires sessions that are not written for ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the time source used to score the index.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New connects to Redis at address.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the snapshot and refreshes its expiry in one pipeline.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(sessionID), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sessionID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the state from Redis.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &state, nil
}

// Delete removes the session and its index entry.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(sessionID))
		pipe.ZRem(ctx, s.indexKey(), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns live sessions, pruning index entries whose expiry has passed.
func (s *Store) List(ctx context.Context) ([]string, error) {
	cutoff := "(" + strconv.FormatInt(s.now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", cutoff).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
