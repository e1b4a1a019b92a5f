package store

import (
	"database/sql"
	"fmt"

	"github.com/pawlurking/greencop/internal/model"
)

type RewardStore struct {
	db DBTX
}

func NewRewardStore(db DBTX) *RewardStore {
	return &RewardStore{db: db}
}

const rewardCols = `id, reward_name, reward_description, reward_claim_info, point_cost, is_available, created_at, updated_at`

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var description sql.NullString
	var available int

	err := scanner.Scan(&r.ID, &r.Name, &description, &r.ClaimInfo, &r.PointCost, &available, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	r.Description = description.String
	r.IsAvailable = available != 0
	return &r, nil
}

func (s *RewardStore) Create(name, description, claimInfo string, pointCost int, available bool) (*model.Reward, error) {
	var a int
	if available {
		a = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO rewards (reward_name, reward_description, reward_claim_info, point_cost, is_available) VALUES (?, ?, ?, ?, ?)`,
		name, description, claimInfo, pointCost, a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

// List returns all catalog rewards, available first, then by name.
func (s *RewardStore) List() ([]model.Reward, error) {
	rows, err := s.db.Query(`SELECT ` + rewardCols + ` FROM rewards ORDER BY is_available DESC, reward_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()
	return collectRewards(rows)
}

// ListAvailable returns only redeemable rewards, cheapest first.
func (s *RewardStore) ListAvailable() ([]model.Reward, error) {
	rows, err := s.db.Query(`SELECT ` + rewardCols + ` FROM rewards WHERE is_available = 1 ORDER BY point_cost ASC, reward_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list available rewards: %w", err)
	}
	defer rows.Close()
	return collectRewards(rows)
}

func collectRewards(rows *sql.Rows) ([]model.Reward, error) {
	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

func (s *RewardStore) Update(id int64, name, description, claimInfo string, pointCost int, available bool) (*model.Reward, error) {
	var a int
	if available {
		a = 1
	}

	_, err := s.db.Exec(
		`UPDATE rewards SET reward_name = ?, reward_description = ?, reward_claim_info = ?, point_cost = ?, is_available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, description, claimInfo, pointCost, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	return s.GetByID(id)
}
