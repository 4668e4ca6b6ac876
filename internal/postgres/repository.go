package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playerboard/internal/config"
	"github.com/playerboard/internal/domain"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// RunMigrations creates the players table if it does not exist
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			score BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_score ON players(score DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// ListPlayers retrieves every player ordered by score descending.
// Ties are broken by id ascending so the order is stable.
func (r *Repository) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	query := `
		SELECT id, username, score, created_at, updated_at
		FROM players
		ORDER BY score DESC, id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	players := []domain.Player{}
	for rows.Next() {
		var p domain.Player
		err := rows.Scan(&p.ID, &p.Username, &p.Score, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return players, nil
}

// CreatePlayer inserts a new player record and returns it with the
// generated id. created_at and updated_at are set to the same instant.
func (r *Repository) CreatePlayer(ctx context.Context, username string, score int64) (*domain.Player, error) {
	query := `
		INSERT INTO players (username, score, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`
	now := time.Now().UTC()
	p := domain.Player{
		Username:  username,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.pool.QueryRow(ctx, query, username, score, now).Scan(&p.ID); err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	return &p, nil
}

// DeletePlayer removes a player by id. It returns whether a record
// existed; a missing id is not an error.
func (r *Repository) DeletePlayer(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("deleting player: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// AllScores retrieves every player's score keyed by id (for mirror rebuilds)
func (r *Repository) AllScores(ctx context.Context) (map[int64]int64, error) {
	query := `SELECT id, score FROM players`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("getting all scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int64]int64)
	for rows.Next() {
		var id, score int64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores[id] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting all scores: %w", err)
	}
	return scores, nil
}

// PlayerCount returns the total number of players
func (r *Repository) PlayerCount(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM players`
	var count int64
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("getting player count: %w", err)
	}
	return count, nil
}
