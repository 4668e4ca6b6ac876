package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playerboard/internal/config"
	"github.com/playerboard/internal/redis"
)

type staticSource struct {
	mu     sync.Mutex
	scores map[int64]int64
}

func (s *staticSource) AllScores(ctx context.Context) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]int64, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out, nil
}

func (s *staticSource) set(scores map[int64]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = scores
}

func newTestWorker(t *testing.T, interval time.Duration) (*SyncWorker, *staticSource, *redis.RankMirror) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mirror := redis.NewRankMirrorFromClient(client, logger)
	source := &staticSource{scores: map[int64]int64{}}
	cfg := &config.SyncConfig{Interval: interval, Enabled: true}
	return NewSyncWorker(source, mirror, cfg, logger), source, mirror
}

func TestRebuildPopulatesMirror(t *testing.T) {
	w, source, mirror := newTestWorker(t, time.Minute)
	ctx := context.Background()

	source.set(map[int64]int64{1: 50, 2: 90})
	require.NoError(t, w.Rebuild(ctx))

	entries, err := mirror.TopN(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].PlayerID)
}

func TestRebuildDropsDeletedPlayers(t *testing.T) {
	w, source, mirror := newTestWorker(t, time.Minute)
	ctx := context.Background()

	source.set(map[int64]int64{1: 50, 2: 90})
	require.NoError(t, w.Rebuild(ctx))

	source.set(map[int64]int64{1: 50})
	require.NoError(t, w.Rebuild(ctx))

	count, err := mirror.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestWorkerPeriodicSync(t *testing.T) {
	w, source, mirror := newTestWorker(t, 20*time.Millisecond)
	ctx := context.Background()

	source.set(map[int64]int64{1: 50})
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.Eventually(t, func() bool {
		count, err := mirror.Count(ctx)
		return err == nil && count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerStartStopIdempotent(t *testing.T) {
	w, _, _ := newTestWorker(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
