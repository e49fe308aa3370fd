package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes the latest snapshot under a key prefix and announces
// updates on a pub/sub channel
type RedisSink struct {
	BaseSink
	client *redis.Client
	prefix string
}

// NewRedisSink creates a new Redis sink
func NewRedisSink(address, password string, db int, prefix string) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisSink(client, prefix), nil
}

func newRedisSink(client *redis.Client, prefix string) *RedisSink {
	if prefix == "" {
		prefix = "swim-timer"
	}
	return &RedisSink{
		BaseSink: BaseSink{sinkType: "redis"},
		client:   client,
		prefix:   prefix,
	}
}

// LatestKey is the key holding the latest snapshot JSON
func (s *RedisSink) LatestKey() string {
	return s.prefix + ":results:latest"
}

// LatestCSVKey is the key holding the latest canonical CSV
func (s *RedisSink) LatestCSVKey() string {
	return s.prefix + ":results:latest.csv"
}

// Channel is the pub/sub channel announcing new snapshots
func (s *RedisSink) Channel() string {
	return s.prefix + ":results:updates"
}

// Publish stores the snapshot and CSV atomically and notifies subscribers
func (s *RedisSink) Publish(ctx context.Context, pub *Publication) error {
	data, err := json.Marshal(pub.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	notice, err := json.Marshal(map[string]interface{}{
		"race_id": pub.Snapshot.RaceID,
		"version": pub.Snapshot.Version,
		"state":   pub.Snapshot.State,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.LatestKey(), data, 0)
		pipe.Set(ctx, s.LatestCSVKey(), pub.CSV, 0)
		pipe.Publish(ctx, s.Channel(), notice)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	slog.Debug("results published to redis",
		"key", s.LatestKey(),
		"race_id", pub.Snapshot.RaceID,
		"version", pub.Snapshot.Version,
	)
	return nil
}

// HealthCheck verifies Redis connectivity
func (s *RedisSink) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisSink) Close() error {
	return s.client.Close()
}
