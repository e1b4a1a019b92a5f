package store

import (
	"database/sql"
	"fmt"

	"github.com/pawlurking/greencop/internal/model"
)

// KarmaStore maintains the denormalized per-user point aggregate. The score is
// a cache of the transaction log, never independently authoritative; Set
// exists so the cache can be rebuilt from the log.
type KarmaStore struct {
	db DBTX
}

func NewKarmaStore(db DBTX) *KarmaStore {
	return &KarmaStore{db: db}
}

func (s *KarmaStore) Get(userID int64) (*model.KarmaScore, error) {
	row := s.db.QueryRow(`SELECT user_id, score, updated_at FROM karma_scores WHERE user_id = ?`, userID)
	var k model.KarmaScore
	err := row.Scan(&k.UserID, &k.Score, &k.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get karma score: %w", err)
	}
	return &k, nil
}

// AddPoints upserts the aggregate, incrementing by delta. Negative deltas are
// allowed here (redemptions); clamping is a display concern.
func (s *KarmaStore) AddPoints(userID int64, delta int) error {
	_, err := s.db.Exec(
		`INSERT INTO karma_scores (user_id, score) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET score = score + excluded.score, updated_at = CURRENT_TIMESTAMP`,
		userID, delta,
	)
	if err != nil {
		return fmt.Errorf("add karma points: %w", err)
	}
	return nil
}

// Set overwrites the aggregate with a log-derived value.
func (s *KarmaStore) Set(userID int64, score int) error {
	_, err := s.db.Exec(
		`INSERT INTO karma_scores (user_id, score) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET score = excluded.score, updated_at = CURRENT_TIMESTAMP`,
		userID, score,
	)
	if err != nil {
		return fmt.Errorf("set karma score: %w", err)
	}
	return nil
}
