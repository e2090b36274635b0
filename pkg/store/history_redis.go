package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"furrykids/pkg/domain"
)

const historyKeyPrefix = "furrykids:history:"

// RedisHistory keeps per-pet message logs in a redis list, oldest first.
type RedisHistory struct {
	client *redis.Client
	maxLen int64
}

// RedisHistoryConfig configures the archive.
type RedisHistoryConfig struct {
	Addr     string
	Password string
	// MaxLen trims each pet's log to the newest N messages. Zero keeps all.
	MaxLen int64
}

// NewRedisHistory connects the archive to redis.
func NewRedisHistory(cfg RedisHistoryConfig) (*RedisHistory, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	return &RedisHistory{client: client, maxLen: cfg.MaxLen}, nil
}

func historyKey(petID uuid.UUID) string {
	return historyKeyPrefix + petID.String()
}

// Append pushes a message onto the pet's log and trims to MaxLen.
func (h *RedisHistory) Append(ctx context.Context, petID uuid.UUID, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	key := historyKey(petID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if h.maxLen > 0 {
		pipe.LTrim(ctx, key, -h.maxLen, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Recent returns up to n newest messages in chronological order.
func (h *RedisHistory) Recent(ctx context.Context, petID uuid.UUID, n int) ([]domain.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := h.client.LRange(ctx, historyKey(petID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	msgs := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Clear drops the pet's entire log.
func (h *RedisHistory) Clear(ctx context.Context, petID uuid.UUID) error {
	if err := h.client.Del(ctx, historyKey(petID)).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (h *RedisHistory) Close() error {
	return h.client.Close()
}
