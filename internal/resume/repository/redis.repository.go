package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resumebuilder/store"
)

// RedisSink keeps the latest snapshot under one key with a TTL so an idle
// session's export eventually disappears.
type RedisSink struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisSink(redisURL string, ttl time.Duration) (*RedisSink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisSinkWithClient(client, ttl), nil
}

func NewRedisSinkWithClient(client *redis.Client, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, key: "resume:snapshot:" + DefaultSessionKey, ttl: ttl}
}

func (s *RedisSink) Key() string {
	return s.key
}

func (s *RedisSink) Save(ctx context.Context, st store.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
