package presence

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// Oracle answers whether a user is actively viewing a chat right now.
type Oracle interface {
	IsActiveInChat(ctx context.Context, userID, chatID string) bool
}

// Store abstracts the presence record read so tests can substitute the redis
// client.
type Store interface {
	GetPresence(ctx context.Context, userID string) (isOnline bool, activeChatID string, err error)
}

// RedisStore reads presence records written by client heartbeats. Records
// live at presence:{userId} as a hash with isOnline and activeChatId fields.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates the redis-backed presence store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// GetPresence reads one presence record.
func (s *RedisStore) GetPresence(ctx context.Context, userID string) (bool, string, error) {
	fields, err := s.client.HGetAll(ctx, "presence:"+userID).Result()
	if err != nil {
		return false, "", err
	}
	return fields["isOnline"] == "true", fields["activeChatId"], nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// StoreOracle implements Oracle over a Store.
type StoreOracle struct {
	store Store
}

// NewOracle builds the presence oracle.
func NewOracle(store Store) *StoreOracle {
	return &StoreOracle{store: store}
}

// IsActiveInChat reports whether userID is online and viewing exactly chatID.
// Any read failure yields false: correctness favors over-notifying rather
// than silently dropping alerts. Chat ids are compared as exact strings.
func (o *StoreOracle) IsActiveInChat(ctx context.Context, userID, chatID string) bool {
	isOnline, activeChatID, err := o.store.GetPresence(ctx, userID)
	if err != nil {
		log.Printf("presence: read failed user_id=%s: %v", userID, err)
		return false
	}
	return isOnline && activeChatID == chatID
}
