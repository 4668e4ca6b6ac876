package domain

import "time"

// Player is a single leaderboard record. IDs are assigned by the store and
// never change; usernames are not unique.
type Player struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreSubmission is the body of a score submit, over HTTP or Kafka.
// Pointer fields distinguish absent from zero-valued input.
type ScoreSubmission struct {
	Username *string `json:"username"`
	Score    *int64  `json:"score"`
}

// Valid reports whether both required fields are present.
func (s ScoreSubmission) Valid() bool {
	return s.Username != nil && s.Score != nil
}

// RankEntry is a live leaderboard position served from the realtime mirror.
type RankEntry struct {
	Rank     int64 `json:"rank"`
	PlayerID int64 `json:"player_id"`
	Score    int64 `json:"score"`
}
