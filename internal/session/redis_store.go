package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mstasiak/storefront-backend/config"
	"github.com/mstasiak/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session data in Redis. The value TTL backs the cookie's
// browser-close expiry; an idle session eventually disappears server-side too.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg *config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	logger.Info("Initializing Redis session store", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
		"ttl":  ttl.String(),
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis session store ready")
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, sid string) (*Data, error) {
	val, err := s.client.Get(ctx, sessionKey(sid)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error("Failed to load session", err, map[string]interface{}{
			"session_id": sid,
		})
		return nil, err
	}

	var data Data
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, fmt.Errorf("failed to decode session data: %w", err)
	}
	return &data, nil
}

func (s *RedisStore) Save(ctx context.Context, sid string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session data: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sid), raw, s.ttl).Err(); err != nil {
		logger.Error("Failed to save session", err, map[string]interface{}{
			"session_id": sid,
		})
		return err
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, sessionKey(sid)).Err()
}

// Close closes the underlying Redis connection
func (s *RedisStore) Close() error {
	logger.Info("Closing Redis session store")
	return s.client.Close()
}

func sessionKey(sid string) string {
	return fmt.Sprintf("session:%s", sid)
}
