package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playerboard/internal/domain"
	"github.com/playerboard/internal/websocket"
)

// broadcastTopN is how many entries each live update carries
const broadcastTopN = 10

// PlayerStore is the durable store behind the service
type PlayerStore interface {
	ListPlayers(ctx context.Context) ([]domain.Player, error)
	CreatePlayer(ctx context.Context, username string, score int64) (*domain.Player, error)
	DeletePlayer(ctx context.Context, id int64) (bool, error)
}

// RankMirror is the realtime rank shadow of the store
type RankMirror interface {
	SetScore(ctx context.Context, playerID, score int64) error
	RemovePlayer(ctx context.Context, playerID int64) error
	TopN(ctx context.Context, n int) ([]domain.RankEntry, error)
	Count(ctx context.Context) (int64, error)
}

// PlayerService provides the business logic for player records. Every
// mutation goes through the durable store first; the mirror and the
// WebSocket push are best-effort side effects.
type PlayerService struct {
	store  PlayerStore
	ranks  RankMirror
	hub    *websocket.Hub
	logger *slog.Logger
}

// NewPlayerService creates a new player service
func NewPlayerService(store PlayerStore, ranks RankMirror, logger *slog.Logger) *PlayerService {
	return &PlayerService{
		store:  store,
		ranks:  ranks,
		logger: logger,
	}
}

// SetHub sets the WebSocket hub used for broadcasting updates
func (s *PlayerService) SetHub(hub *websocket.Hub) {
	s.hub = hub
}

// ListPlayers returns every player ordered by score descending
func (s *PlayerService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return players, nil
}

// SubmitScore creates a new player record and returns it
func (s *PlayerService) SubmitScore(ctx context.Context, username string, score int64) (*domain.Player, error) {
	player, err := s.store.CreatePlayer(ctx, username, score)
	if err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}

	if err := s.ranks.SetScore(ctx, player.ID, player.Score); err != nil {
		// The durable write already succeeded; the mirror catches up on
		// the next sync pass.
		s.logger.Warn("failed to mirror score", "player_id", player.ID, "error", err)
	}

	s.broadcastRanks(ctx)
	return player, nil
}

// DeletePlayer removes a player by id and reports whether it existed
func (s *PlayerService) DeletePlayer(ctx context.Context, id int64) (bool, error) {
	found, err := s.store.DeletePlayer(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting player: %w", err)
	}
	if !found {
		return false, nil
	}

	if err := s.ranks.RemovePlayer(ctx, id); err != nil {
		s.logger.Warn("failed to remove player from mirror", "player_id", id, "error", err)
	}

	s.broadcastRanks(ctx)
	return true, nil
}

// LiveRanks returns the top N entries from the realtime mirror
func (s *PlayerService) LiveRanks(ctx context.Context, n int) ([]domain.RankEntry, error) {
	entries, err := s.ranks.TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("getting live ranks: %w", err)
	}
	return entries, nil
}

// broadcastRanks pushes the current top ranks to connected clients
func (s *PlayerService) broadcastRanks(ctx context.Context) {
	if s.hub == nil {
		return
	}

	entries, err := s.ranks.TopN(ctx, broadcastTopN)
	if err != nil {
		s.logger.Warn("failed to read ranks for broadcast", "error", err)
		return
	}
	total, err := s.ranks.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count ranks for broadcast", "error", err)
		return
	}

	s.hub.BroadcastLeaderboardUpdate(entries, total)
}
