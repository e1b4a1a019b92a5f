package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/store"
)

func newRewardFixture(t *testing.T) (*RewardService, *LedgerService, *model.User, *store.RewardStore) {
	t.Helper()
	db := newTestDB(t)
	rewards := NewRewardService(db, discardLogger())
	ledger := NewLedgerService(db, discardLogger())
	user := createTestUser(t, db, "reporter@example.com", "Reporter")
	return rewards, ledger, user, store.NewRewardStore(db)
}

func TestListAvailableLeadsWithPointsEntry(t *testing.T) {
	rewards, ledger, user, catalog := newRewardFixture(t)
	ctx := context.Background()

	_, err := ledger.AwardPoints(ctx, user.ID, 10, model.TransactionEarnedReport, "garbage reporting")
	require.NoError(t, err)

	_, err = catalog.Create("Tote Bag", "A reusable bag", "Show this screen at the counter", 30, true)
	require.NoError(t, err)
	_, err = catalog.Create("Hidden", "", "n/a", 5, false)
	require.NoError(t, err)

	entries, err := rewards.ListAvailable(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, PointsEntryID, entries[0].ID)
	assert.Equal(t, "Your Points", entries[0].Name)
	assert.Equal(t, 10, entries[0].Cost)
	assert.Equal(t, "Tote Bag", entries[1].Name)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	rewards, ledger, user, catalog := newRewardFixture(t)
	ctx := context.Background()

	_, err := ledger.AwardPoints(ctx, user.ID, 10, model.TransactionEarnedReport, "garbage reporting")
	require.NoError(t, err)
	_, err = ledger.AwardPoints(ctx, user.ID, 10, model.TransactionEarnedReport, "garbage reporting")
	require.NoError(t, err)

	reward, err := catalog.Create("Bike Tune-up", "", "Visit the partner shop", 25, true)
	require.NoError(t, err)

	_, err = rewards.Redeem(ctx, user.ID, reward.ID)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Rejected redemption leaves the ledger untouched.
	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
}

func TestRedeemDecreasesBalanceByCost(t *testing.T) {
	rewards, ledger, user, catalog := newRewardFixture(t)
	ctx := context.Background()

	_, err := ledger.AwardPoints(ctx, user.ID, 30, model.TransactionEarnedCollect, "collecting waste")
	require.NoError(t, err)

	reward, err := catalog.Create("Coffee Voucher", "", "Present at any branch", 25, true)
	require.NoError(t, err)

	tx, err := rewards.Redeem(ctx, user.ID, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionRedeemed, tx.Type)
	assert.Equal(t, 25, tx.Amount)
	assert.Equal(t, "Redeemed Coffee Voucher", tx.Description)

	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestRedeemPointsEntryCashesOutBalance(t *testing.T) {
	rewards, ledger, user, _ := newRewardFixture(t)
	ctx := context.Background()

	_, err := ledger.AwardPoints(ctx, user.ID, 40, model.TransactionEarnedCollect, "collecting waste")
	require.NoError(t, err)

	tx, err := rewards.Redeem(ctx, user.ID, PointsEntryID)
	require.NoError(t, err)
	assert.Equal(t, 40, tx.Amount)

	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestRedeemPointsEntryWithZeroBalanceRejected(t *testing.T) {
	rewards, _, user, _ := newRewardFixture(t)

	_, err := rewards.Redeem(context.Background(), user.ID, PointsEntryID)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestRedeemUnknownOrUnavailableReward(t *testing.T) {
	rewards, ledger, user, catalog := newRewardFixture(t)
	ctx := context.Background()

	_, err := ledger.AwardPoints(ctx, user.ID, 100, model.TransactionEarnedCollect, "collecting waste")
	require.NoError(t, err)

	_, err = rewards.Redeem(ctx, user.ID, 999)
	require.ErrorIs(t, err, ErrNotFound)

	hidden, err := catalog.Create("Retired Reward", "", "n/a", 10, false)
	require.NoError(t, err)

	_, err = rewards.Redeem(ctx, user.ID, hidden.ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCreateRewardValidation(t *testing.T) {
	rewards, _, _, _ := newRewardFixture(t)
	ctx := context.Background()

	var ve *ValidationError
	_, err := rewards.CreateReward(ctx, "", "", "claim", 10, true)
	require.ErrorAs(t, err, &ve)

	_, err = rewards.CreateReward(ctx, "Name", "", "", 10, true)
	require.ErrorAs(t, err, &ve)

	_, err = rewards.CreateReward(ctx, "Name", "", "claim", 0, true)
	require.ErrorAs(t, err, &ve)
}
