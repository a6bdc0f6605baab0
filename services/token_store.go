package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore хранит одноразовые OTP-коды и токены подтверждения с TTL.
type TokenStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// GetAndDelete возвращает значение и сразу удаляет ключ, делая токен одноразовым.
	GetAndDelete(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

var ErrTokenNotFound = errors.New("token not found or expired")

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *redisTokenStore) GetAndDelete(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return value, nil
}

func (s *redisTokenStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return value, nil
}

func (s *redisTokenStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
