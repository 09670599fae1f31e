package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/artemis-inbox/inbox"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of inbox.Repository
 * Entries are kept in a single list, newest at the head
 * LPUSH + LTRIM run in one transaction so the list never exceeds capacity
 */

const DefaultKey = "artemis:inbox:entries"

type Repository struct {
	client   *redis.Client
	key      string
	capacity int
}

// Option configures a Repository
type Option func(*Repository)

// WithKey overrides the list key
func WithKey(key string) Option {
	return func(r *Repository) {
		r.key = key
	}
}

// WithCapacity sets how many entries the list keeps
func WithCapacity(capacity int) Option {
	return func(r *Repository) {
		if capacity > 0 {
			r.capacity = capacity
		}
	}
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int, opts ...Option) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return NewRepositoryWithClient(client, opts...), nil
}

// NewRepositoryWithClient wraps an existing client
func NewRepositoryWithClient(client *redis.Client, opts ...Option) *Repository {
	r := &Repository{
		client:   client,
		key:      DefaultKey,
		capacity: inbox.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append pushes an entry to the head of the list and trims the tail
func (r *Repository) Append(ctx context.Context, entry inbox.Entry) error {
	if err := entry.BodyKind.Validate(); err != nil {
		return fmt.Errorf("validating entry: %w", err)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, data)
		pipe.LTrim(ctx, r.key, 0, int64(r.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("pushing entry: %w", err)
	}

	return nil
}

// List returns the mirrored entries, newest first. Unreadable items are skipped.
func (r *Repository) List(ctx context.Context) ([]inbox.Entry, error) {
	items, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}

	entries := make([]inbox.Entry, 0, len(items))
	for _, item := range items {
		var entry inbox.Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Len returns the number of mirrored entries
func (r *Repository) Len(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}
