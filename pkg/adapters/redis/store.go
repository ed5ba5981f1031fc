package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/elicitation/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "elicitation:transcript:"

// Store implements ports.TranscriptStore on Redis.
// Each transcript is a JSON string; a sorted set scored by the session start
// time indexes them.
type Store struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires transcripts after d. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
	}
}

// WithPrefix namespaces all keys.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects using a redis:// URL.
func New(url string, opts ...Option) (*Store, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) string { return s.prefix + id }
func (s *Store) index() string { return s.prefix + "index" }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Save writes the transcript and its index entry atomically.
func (s *Store) Save(ctx context.Context, t *domain.Transcript) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript %s: %w", t.ID, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(t.ID), data, s.ttl)
		pipe.ZAdd(ctx, s.index(), backend.Z{
			Score:  float64(t.StartedAt.UnixMilli()),
			Member: t.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save transcript %s: %w", t.ID, err)
	}
	return nil
}

// Load fetches one transcript.
func (s *Store) Load(ctx context.Context, id string) (*domain.Transcript, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrTranscriptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", id, err)
	}
	var t domain.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode transcript %s: %w", id, err)
	}
	return &t, nil
}

// List returns the indexed IDs, oldest first. Index entries whose transcript
// has expired are removed on the way.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	if len(ids) == 0 || s.ttl == 0 {
		return ids, nil
	}

	exists := make([]*backend.IntCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe backend.Pipeliner) error {
		for i, id := range ids {
			exists[i] = pipe.Exists(ctx, s.key(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}

	live := ids[:0]
	var stale []any
	for i, id := range ids {
		if exists[i].Val() == 1 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.index(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune transcript index: %w", err)
		}
	}
	return live, nil
}

// Delete removes the transcript and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.ZRem(ctx, s.index(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete transcript %s: %w", id, err)
	}
	return nil
}
