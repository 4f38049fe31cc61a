package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/pocketbank/backend/internal/models"
)

// ChannelStore persists advisory delivery-channel metadata. The in-memory
// store is the default; the Redis store survives restarts when a Redis
// instance is configured.
type ChannelStore interface {
	Save(ctx context.Context, channel models.AlertChannel) error
	List(ctx context.Context, userID string) ([]models.AlertChannel, error)
}

// MemoryChannelStore keeps channels in a map, one entry per (user, kind).
type MemoryChannelStore struct {
	mu       sync.RWMutex
	channels map[string]map[string]models.AlertChannel // userID -> kind -> channel
}

func NewMemoryChannelStore() *MemoryChannelStore {
	return &MemoryChannelStore{
		channels: make(map[string]map[string]models.AlertChannel),
	}
}

func (s *MemoryChannelStore) Save(_ context.Context, channel models.AlertChannel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKind, ok := s.channels[channel.UserID]
	if !ok {
		byKind = make(map[string]models.AlertChannel)
		s.channels[channel.UserID] = byKind
	}
	byKind[channel.Kind] = channel
	return nil
}

func (s *MemoryChannelStore) List(_ context.Context, userID string) ([]models.AlertChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AlertChannel{}
	for _, ch := range s.channels[userID] {
		out = append(out, ch)
	}
	return out, nil
}

// RedisChannelStore keeps one hash per user, field per channel kind.
type RedisChannelStore struct {
	client *redis.Client
}

func NewRedisChannelStore(client *redis.Client) *RedisChannelStore {
	return &RedisChannelStore{client: client}
}

func (s *RedisChannelStore) Save(ctx context.Context, channel models.AlertChannel) error {
	data, err := json.Marshal(channel)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, channelKey(channel.UserID), channel.Kind, data).Err()
}

func (s *RedisChannelStore) List(ctx context.Context, userID string) ([]models.AlertChannel, error) {
	fields, err := s.client.HGetAll(ctx, channelKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	out := []models.AlertChannel{}
	for _, raw := range fields {
		var ch models.AlertChannel
		if err := json.Unmarshal([]byte(raw), &ch); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func channelKey(userID string) string {
	return fmt.Sprintf("alerts:channels:%s", userID)
}
