package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pawlurking/greencop/internal/metrics"
	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/store"
)

// ComputeBalance folds a transaction history into a point balance: earned
// minus redeemed, clamped at zero for display. The fold is a pure function of
// the history: order-independent and safe to recompute at any time.
func ComputeBalance(txs []model.Transaction) int {
	balance := 0
	for _, t := range txs {
		if t.Type.Earned() {
			balance += t.Amount
		} else {
			balance -= t.Amount
		}
	}
	if balance < 0 {
		balance = 0
	}
	return balance
}

// LedgerService owns the append-only transaction log and the karma cache.
type LedgerService struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLedgerService(db *sql.DB, logger *slog.Logger) *LedgerService {
	return &LedgerService{db: db, logger: logger}
}

// Balance derives the user's balance from the full transaction log. Never a
// cached counter: the log is the sole source of truth.
func (s *LedgerService) Balance(ctx context.Context, userID int64) (int, error) {
	txs, err := store.NewTransactionStore(s.db).ListByUser(userID)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}
	return ComputeBalance(txs), nil
}

// RecentTransactions returns the newest limit entries for display.
func (s *LedgerService) RecentTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	return store.NewTransactionStore(s.db).ListRecentByUser(userID, limit)
}

// RecordTransaction appends one immutable ledger entry.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID int64, typ model.TransactionType, amount int, description string) (*model.Transaction, error) {
	if !typ.Valid() {
		return nil, validationf("type", "unknown transaction type %q", typ)
	}
	if amount <= 0 {
		return nil, validationf("amount", "must be positive, got %d", amount)
	}
	return store.NewTransactionStore(s.db).Create(userID, typ, amount, description)
}

// AwardPoints credits a user inside a single transaction: karma upsert, ledger
// append, notification. All three land or none do.
func (s *LedgerService) AwardPoints(ctx context.Context, userID int64, points int, typ model.TransactionType, reason string) (*model.Transaction, error) {
	var awarded *model.Transaction
	err := store.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := awardPoints(tx, userID, points, typ, reason)
		if err != nil {
			return err
		}
		awarded = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.PointsAwarded.WithLabelValues(string(typ)).Add(float64(points))
	s.logger.Info("points awarded", "user_id", userID, "points", points, "type", string(typ))
	return awarded, nil
}

// awardPoints is the shared unit run by every point-earning event. It operates
// on the caller's transaction scope so report creation and waste collection
// can bundle it with their own writes.
func awardPoints(q store.DBTX, userID int64, points int, typ model.TransactionType, reason string) (*model.Transaction, error) {
	if !typ.Valid() || typ == model.TransactionRedeemed {
		return nil, validationf("type", "cannot award with type %q", typ)
	}
	if points <= 0 {
		return nil, validationf("points", "must be positive, got %d", points)
	}

	if err := store.NewKarmaStore(q).AddPoints(userID, points); err != nil {
		return nil, err
	}

	t, err := store.NewTransactionStore(q).Create(userID, typ, points, "Points earned for "+reason)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("You've earned %d points for %s", points, reason)
	if _, err := store.NewNotificationStore(q).Create(userID, message, "reward"); err != nil {
		return nil, err
	}

	return t, nil
}

// KarmaScore returns the cached aggregate, zero if the user has never earned.
func (s *LedgerService) KarmaScore(ctx context.Context, userID int64) (int, error) {
	k, err := store.NewKarmaStore(s.db).Get(userID)
	if err != nil {
		return 0, err
	}
	if k == nil {
		return 0, nil
	}
	return k.Score, nil
}

// RebuildKarma recomputes the karma cache from the log. The cache is never
// authoritative; any drift is repaired here.
func (s *LedgerService) RebuildKarma(ctx context.Context, userID int64) (int, error) {
	var score int
	err := store.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		txs, err := store.NewTransactionStore(tx).ListByUser(userID)
		if err != nil {
			return err
		}
		score = 0
		for _, t := range txs {
			if t.Type.Earned() {
				score += t.Amount
			} else {
				score -= t.Amount
			}
		}
		return store.NewKarmaStore(tx).Set(userID, score)
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}
