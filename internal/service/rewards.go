package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pawlurking/greencop/internal/metrics"
	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/store"
)

// PointsEntryID is the sentinel reward ID for the synthetic "your points"
// entry prepended to reward listings. Redeeming it cashes out the whole
// balance.
const PointsEntryID int64 = 0

type RewardService struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRewardService(db *sql.DB, logger *slog.Logger) *RewardService {
	return &RewardService{db: db, logger: logger}
}

// ListAvailable returns the user's balance as a pseudo-reward entry followed
// by every available catalog reward, so the UI shows points and redeemables in
// one list.
func (s *RewardService) ListAvailable(ctx context.Context, userID int64) ([]model.AvailableReward, error) {
	txs, err := store.NewTransactionStore(s.db).ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	balance := ComputeBalance(txs)

	catalog, err := store.NewRewardStore(s.db).ListAvailable()
	if err != nil {
		return nil, err
	}

	entries := make([]model.AvailableReward, 0, len(catalog)+1)
	entries = append(entries, model.AvailableReward{
		ID:        PointsEntryID,
		Name:      "Your Points",
		ClaimInfo: "Points earned from reporting and collecting waste",
		Cost:      balance,
	})
	for _, r := range catalog {
		entries = append(entries, model.AvailableReward{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			ClaimInfo:   r.ClaimInfo,
			Cost:        r.PointCost,
		})
	}
	return entries, nil
}

// Redeem converts points into a claimed reward. The balance is re-derived from
// the log inside the same transaction that appends the redemption, so a
// concurrent redemption cannot slip past the check against a stale read.
func (s *RewardService) Redeem(ctx context.Context, userID, rewardID int64) (*model.Transaction, error) {
	var redeemed *model.Transaction

	err := store.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		name := "Your Points"
		cost := 0

		if rewardID != PointsEntryID {
			reward, err := store.NewRewardStore(tx).GetByID(rewardID)
			if err != nil {
				return err
			}
			if reward == nil {
				return fmt.Errorf("reward %d: %w", rewardID, ErrNotFound)
			}
			if !reward.IsAvailable {
				return validationf("reward", "%q is not available", reward.Name)
			}
			name = reward.Name
			cost = reward.PointCost
		}

		txs, err := store.NewTransactionStore(tx).ListByUser(userID)
		if err != nil {
			return err
		}
		balance := ComputeBalance(txs)

		if rewardID == PointsEntryID {
			// Cashing out all points: cost is the whole balance.
			cost = balance
		}
		if cost <= 0 || balance < cost {
			return ErrInsufficientBalance
		}

		t, err := store.NewTransactionStore(tx).Create(userID, model.TransactionRedeemed, cost, "Redeemed "+name)
		if err != nil {
			return err
		}
		if err := store.NewKarmaStore(tx).AddPoints(userID, -cost); err != nil {
			return err
		}

		message := fmt.Sprintf("You've redeemed %d points for %s", cost, name)
		if _, err := store.NewNotificationStore(tx).Create(userID, message, "redemption"); err != nil {
			return err
		}

		redeemed = t
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			metrics.RedemptionsRejected.Inc()
		}
		return nil, err
	}

	metrics.PointsRedeemed.Add(float64(redeemed.Amount))
	s.logger.Info("reward redeemed", "user_id", userID, "reward_id", rewardID, "points", redeemed.Amount)
	return redeemed, nil
}

// Catalog management, used by the admin endpoints.

func (s *RewardService) CreateReward(ctx context.Context, name, description, claimInfo string, pointCost int, available bool) (*model.Reward, error) {
	if name == "" {
		return nil, validationf("reward_name", "must not be empty")
	}
	if claimInfo == "" {
		return nil, validationf("reward_claim_info", "must not be empty")
	}
	if pointCost <= 0 {
		return nil, validationf("point_cost", "must be positive, got %d", pointCost)
	}
	return store.NewRewardStore(s.db).Create(name, description, claimInfo, pointCost, available)
}

func (s *RewardService) UpdateReward(ctx context.Context, id int64, name, description, claimInfo string, pointCost int, available bool) (*model.Reward, error) {
	if name == "" {
		return nil, validationf("reward_name", "must not be empty")
	}
	if pointCost <= 0 {
		return nil, validationf("point_cost", "must be positive, got %d", pointCost)
	}

	rs := store.NewRewardStore(s.db)
	existing, err := rs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("reward %d: %w", id, ErrNotFound)
	}
	return rs.Update(id, name, description, claimInfo, pointCost, available)
}

func (s *RewardService) ListCatalog(ctx context.Context) ([]model.Reward, error) {
	return store.NewRewardStore(s.db).List()
}
