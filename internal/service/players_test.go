package service

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

	"github.com/playerboard/internal/domain"
	"github.com/playerboard/internal/redis"
)

type memStore struct {
	mu      sync.Mutex
	nextID  int64
	players map[int64]domain.Player
}

func newMemStore() *memStore {
	return &memStore{players: make(map[int64]domain.Player)}
}

func (m *memStore) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := make([]domain.Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	return players, nil
}

func (m *memStore) CreatePlayer(ctx context.Context, username string, score int64) (*domain.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	p := domain.Player{ID: m.nextID, Username: username, Score: score, CreatedAt: now, UpdatedAt: now}
	m.players[p.ID] = p
	return &p, nil
}

func (m *memStore) DeletePlayer(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[id]; !ok {
		return false, nil
	}
	delete(m.players, id)
	return true, nil
}

func newTestService(t *testing.T) (*PlayerService, *memStore, *miniredis.Miniredis) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ranks := redis.NewRankMirrorFromClient(client, logger)
	store := newMemStore()
	return NewPlayerService(store, ranks, logger), store, mr
}

func TestSubmitScoreMirrorsRank(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.SubmitScore(ctx, "alice", 50)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "alice", p.Username)
	assert.True(t, p.CreatedAt.Equal(p.UpdatedAt))

	entries, err := svc.LiveRanks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, p.ID, entries[0].PlayerID)
	assert.Equal(t, int64(50), entries[0].Score)
}

func TestDeletePlayerRemovesFromMirror(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.SubmitScore(ctx, "alice", 50)
	require.NoError(t, err)

	found, err := svc.DeletePlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found)

	entries, err := svc.LiveRanks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeletePlayerNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	found, err := svc.DeletePlayer(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSubmitScoreSurvivesMirrorOutage(t *testing.T) {
	svc, store, mr := newTestService(t)
	ctx := context.Background()

	mr.Close()

	// The durable write must succeed even when the mirror is down
	p, err := svc.SubmitScore(ctx, "alice", 50)
	require.NoError(t, err)
	require.NotNil(t, p)

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}
