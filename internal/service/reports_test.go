package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/store"
)

func newReportFixture(t *testing.T) (*ReportService, *LedgerService, *model.User, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	reports := NewReportService(db, discardLogger(), DefaultReportPoints, DefaultCollectPoints)
	ledger := NewLedgerService(db, discardLogger())
	user := createTestUser(t, db, "reporter@example.com", "Reporter")
	return reports, ledger, user, db
}

func validParams(userID int64) CreateReportParams {
	return CreateReportParams{
		UserID:        userID,
		Location:      "12 Riverside Road",
		WasteType:     "plastic",
		Amount:        "2 bags",
		SubmissionKey: "sub-1",
	}
}

func TestCreateReportAwardsExactlyOnce(t *testing.T) {
	reports, ledger, user, db := newReportFixture(t)
	ctx := context.Background()

	report, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusPending, report.Status)
	assert.Equal(t, user.ID, report.UserID)

	// Exactly one earned_report transaction and one notification.
	txs, err := store.NewTransactionStore(db).ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, model.TransactionEarnedReport, txs[0].Type)
	assert.Equal(t, 10, txs[0].Amount)

	assert.Equal(t, 1, countRows(t, db, "notifications"))

	balance, err := ledger.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestCreateReportDuplicateSubmissionKeyIsIdempotent(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()

	first, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)

	second, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// The retry produced no extra report, transaction, or notification.
	assert.Equal(t, 1, countRows(t, db, "reports"))
	assert.Equal(t, 1, countRows(t, db, "transactions"))
	assert.Equal(t, 1, countRows(t, db, "notifications"))
}

func TestCreateReportValidation(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()

	var ve *ValidationError

	p := validParams(user.ID)
	p.Location = "   "
	_, err := reports.CreateReport(ctx, p)
	require.ErrorAs(t, err, &ve)

	p = validParams(user.ID)
	p.WasteType = ""
	_, err = reports.CreateReport(ctx, p)
	require.ErrorAs(t, err, &ve)

	p = validParams(user.ID)
	p.Amount = ""
	_, err = reports.CreateReport(ctx, p)
	require.ErrorAs(t, err, &ve)

	// Failed creations must leave no partial state behind.
	assert.Equal(t, 0, countRows(t, db, "reports"))
	assert.Equal(t, 0, countRows(t, db, "transactions"))
	assert.Equal(t, 0, countRows(t, db, "notifications"))
}

func TestCreateReportUnknownUserLeavesNoPartialState(t *testing.T) {
	reports, _, _, db := newReportFixture(t)

	_, err := reports.CreateReport(context.Background(), validParams(9999))
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, countRows(t, db, "reports"))
	assert.Equal(t, 0, countRows(t, db, "transactions"))
	assert.Equal(t, 0, countRows(t, db, "notifications"))
}

func TestCreateReportStoresInferenceResult(t *testing.T) {
	reports, _, user, _ := newReportFixture(t)

	p := validParams(user.ID)
	p.InferenceResult = &model.InferenceResult{
		Version:    1,
		WasteType:  "plastic",
		Quantity:   "2 bags",
		Confidence: 0.91,
	}

	report, err := reports.CreateReport(context.Background(), p)
	require.NoError(t, err)
	require.NotNil(t, report.InferenceResult)
	assert.Equal(t, 1, report.InferenceResult.Version)
	assert.InDelta(t, 0.91, report.InferenceResult.Confidence, 1e-9)
}

func TestUpdateTaskStatusTransitions(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	report, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)

	// pending -> in_progress assigns the collector.
	updated, err := reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusInProgress, &collector.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusInProgress, updated.Status)
	require.NotNil(t, updated.CollectorID)
	assert.Equal(t, collector.ID, *updated.CollectorID)

	// in_progress -> collected -> verified.
	updated, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusCollected, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusCollected, updated.Status)

	updated, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusVerified, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusVerified, updated.Status)
}

func TestUpdateTaskStatusDirectCollection(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	report, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)

	updated, err := reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusCollected, &collector.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusCollected, updated.Status)
	require.NotNil(t, updated.CollectorID)
	assert.Equal(t, collector.ID, *updated.CollectorID)
}

func TestUpdateTaskStatusRejectsIllegalMoves(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	report, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)

	// Skip: pending -> verified.
	_, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusVerified, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusCollected, &collector.ID)
	require.NoError(t, err)

	// Reversal: collected -> pending.
	_, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusPending, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Unknown status.
	_, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatus("lost"), nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	// Missing report.
	_, err = reports.UpdateTaskStatus(ctx, 9999, model.ReportStatusCollected, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskStatusRepeatIsIdempotent(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	report, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)

	first, err := reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusCollected, &collector.ID)
	require.NoError(t, err)

	repeat, err := reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusCollected, &collector.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Status, repeat.Status)
	require.NotNil(t, repeat.CollectorID)
	assert.Equal(t, collector.ID, *repeat.CollectorID)

	// Reassigning to a different collector is rejected.
	other := createTestUser(t, db, "other@example.com", "Other")
	_, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusCollected, &other.ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestSaveCollectedWasteAwardsOnce(t *testing.T) {
	reports, ledger, user, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	report, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)

	record, err := reports.SaveCollectedWaste(ctx, report.ID, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, record.ReportID)
	assert.Equal(t, collector.ID, record.CollectorID)
	assert.Equal(t, "collected", record.Status)

	// Report moved to collected with the collector assigned.
	got, err := store.NewReportStore(db).GetByID(report.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusCollected, got.Status)
	require.NotNil(t, got.CollectorID)
	assert.Equal(t, collector.ID, *got.CollectorID)

	balance, err := ledger.Balance(ctx, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, balance)

	// Repeating the collection returns the same record and awards nothing.
	repeat, err := reports.SaveCollectedWaste(ctx, report.ID, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, repeat.ID)

	balance, err = ledger.Balance(ctx, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, balance)
	assert.Equal(t, 1, countRows(t, db, "collected_waste"))
}

func TestSaveCollectedWasteRejectsVerifiedReport(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	report, err := reports.CreateReport(ctx, validParams(user.ID))
	require.NoError(t, err)

	_, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusCollected, &collector.ID)
	require.NoError(t, err)
	_, err = reports.UpdateTaskStatus(ctx, report.ID, model.ReportStatusVerified, nil)
	require.NoError(t, err)

	_, err = reports.SaveCollectedWaste(ctx, report.ID, collector.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSaveReward(t *testing.T) {
	reports, ledger, _, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	tx, err := reports.SaveReward(ctx, collector.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionEarnedCollect, tx.Type)
	assert.Equal(t, 15, tx.Amount)

	balance, err := ledger.Balance(ctx, collector.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, balance)
}

func TestGetWasteCollectionTasksExcludesVerified(t *testing.T) {
	reports, _, user, db := newReportFixture(t)
	ctx := context.Background()
	collector := createTestUser(t, db, "collector@example.com", "Collector")

	p1 := validParams(user.ID)
	p1.SubmissionKey = "sub-a"
	first, err := reports.CreateReport(ctx, p1)
	require.NoError(t, err)

	p2 := validParams(user.ID)
	p2.SubmissionKey = "sub-b"
	second, err := reports.CreateReport(ctx, p2)
	require.NoError(t, err)

	_, err = reports.UpdateTaskStatus(ctx, first.ID, model.ReportStatusCollected, &collector.ID)
	require.NoError(t, err)
	_, err = reports.UpdateTaskStatus(ctx, first.ID, model.ReportStatusVerified, nil)
	require.NoError(t, err)

	tasks, err := reports.GetWasteCollectionTasks(ctx, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, second.ID, tasks[0].ID)
}
