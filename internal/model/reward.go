package model

import "time"

// Reward is a shared catalog entry. It is not owned by any user; redemption is
// recorded in the transaction ledger, not on the reward row.
type Reward struct {
	ID          int64     `json:"id"`
	Name        string    `json:"reward_name"`
	Description string    `json:"reward_description"`
	ClaimInfo   string    `json:"reward_claim_info"`
	PointCost   int       `json:"point_cost"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AvailableReward is what the rewards listing returns: the catalog plus a
// synthetic first entry (ID 0) carrying the user's current point balance, so
// the UI can render "your points" alongside redeemable items in one call.
type AvailableReward struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ClaimInfo   string `json:"claim_info"`
	Cost        int    `json:"cost"`
}
