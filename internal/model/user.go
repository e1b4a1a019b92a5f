package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// KarmaScore is the denormalized per-user point aggregate. It is strictly a
// cache of the transaction log and can be rebuilt from it at any time.
type KarmaScore struct {
	UserID    int64     `json:"user_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}
