package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/playerboard/internal/config"
	"github.com/playerboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// rankKey is the sorted set holding the realtime rank mirror. The mirror
// is rebuilt from PostgreSQL, never the other way around.
const rankKey = "leaderboard:players:realtime"

// RankMirror maintains a Redis sorted set that shadows the players table.
// It feeds the WebSocket push and the live-rank endpoint; the canonical
// list endpoint always reads PostgreSQL directly.
type RankMirror struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRankMirror connects to Redis and returns a mirror handle
func NewRankMirror(cfg *config.RedisConfig, logger *slog.Logger) (*RankMirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RankMirror{
		client: client,
		logger: logger,
	}, nil
}

// NewRankMirrorFromClient wraps an existing client (used by tests)
func NewRankMirrorFromClient(client *redis.Client, logger *slog.Logger) *RankMirror {
	return &RankMirror{client: client, logger: logger}
}

// Close closes the Redis connection
func (m *RankMirror) Close() error {
	return m.client.Close()
}

// SetScore records a player's score in the mirror
func (m *RankMirror) SetScore(ctx context.Context, playerID, score int64) error {
	err := m.client.ZAdd(ctx, rankKey, redis.Z{
		Score:  float64(score),
		Member: strconv.FormatInt(playerID, 10),
	}).Err()
	if err != nil {
		return fmt.Errorf("setting score: %w", err)
	}
	return nil
}

// RemovePlayer drops a player from the mirror
func (m *RankMirror) RemovePlayer(ctx context.Context, playerID int64) error {
	err := m.client.ZRem(ctx, rankKey, strconv.FormatInt(playerID, 10)).Err()
	if err != nil {
		return fmt.Errorf("removing player: %w", err)
	}
	return nil
}

// TopN returns the top N entries by score descending
func (m *RankMirror) TopN(ctx context.Context, n int) ([]domain.RankEntry, error) {
	results, err := m.client.ZRevRangeWithScores(ctx, rankKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	entries := make([]domain.RankEntry, len(results))
	for i, result := range results {
		id, err := strconv.ParseInt(result.Member.(string), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing member %q: %w", result.Member, err)
		}
		entries[i] = domain.RankEntry{
			Rank:     int64(i + 1),
			PlayerID: id,
			Score:    int64(result.Score),
		}
	}
	return entries, nil
}

// Count returns the number of mirrored players
func (m *RankMirror) Count(ctx context.Context) (int64, error) {
	count, err := m.client.ZCard(ctx, rankKey).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// ReplaceAll atomically swaps the mirror contents for the given scores
func (m *RankMirror) ReplaceAll(ctx context.Context, scores map[int64]int64) error {
	pipe := m.client.TxPipeline()
	pipe.Del(ctx, rankKey)
	for playerID, score := range scores {
		pipe.ZAdd(ctx, rankKey, redis.Z{
			Score:  float64(score),
			Member: strconv.FormatInt(playerID, 10),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replacing mirror: %w", err)
	}
	return nil
}
