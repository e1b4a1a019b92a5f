package store

import (
	"testing"

	"github.com/pawlurking/greencop/internal/model"
)

func TestTransactionAppendAndList(t *testing.T) {
	db := setupTestDB(t)
	user := createReportUser(t, NewUserStore(db), "a@example.com")
	txs := NewTransactionStore(db)

	for _, c := range []struct {
		typ    model.TransactionType
		amount int
	}{
		{model.TransactionEarnedReport, 10},
		{model.TransactionEarnedCollect, 15},
		{model.TransactionRedeemed, 5},
	} {
		if _, err := txs.Create(user.ID, c.typ, c.amount, "test"); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}

	all, err := txs.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("transactions = %d, want 3", len(all))
	}
	// Newest first: same-second inserts fall back to id ordering.
	if all[0].Type != model.TransactionRedeemed {
		t.Errorf("first = %q, want redeemed", all[0].Type)
	}

	recent, err := txs.ListRecentByUser(user.ID, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent = %d, want 2", len(recent))
	}
}

func TestTransactionRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	user := createReportUser(t, NewUserStore(db), "a@example.com")
	txs := NewTransactionStore(db)

	// The schema CHECK backs up the service-level validation.
	if _, err := txs.Create(user.ID, model.TransactionEarnedReport, 0, "zero"); err == nil {
		t.Error("expected CHECK violation for zero amount")
	}
	if _, err := txs.Create(user.ID, model.TransactionEarnedReport, -3, "negative"); err == nil {
		t.Error("expected CHECK violation for negative amount")
	}
}

func TestTransactionRejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)
	user := createReportUser(t, NewUserStore(db), "a@example.com")

	if _, err := NewTransactionStore(db).Create(user.ID, "earned_mystery", 5, "bad"); err == nil {
		t.Error("expected CHECK violation for unknown type")
	}
}

func TestKarmaUpsertAndSet(t *testing.T) {
	db := setupTestDB(t)
	user := createReportUser(t, NewUserStore(db), "a@example.com")
	karma := NewKarmaStore(db)

	if err := karma.AddPoints(user.ID, 10); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := karma.AddPoints(user.ID, 15); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := karma.AddPoints(user.ID, -5); err != nil {
		t.Fatalf("add points: %v", err)
	}

	k, err := karma.Get(user.ID)
	if err != nil {
		t.Fatalf("get karma: %v", err)
	}
	if k == nil || k.Score != 20 {
		t.Fatalf("karma = %+v, want score 20", k)
	}

	if err := karma.Set(user.ID, 7); err != nil {
		t.Fatalf("set karma: %v", err)
	}
	k, err = karma.Get(user.ID)
	if err != nil {
		t.Fatalf("get karma: %v", err)
	}
	if k.Score != 7 {
		t.Errorf("karma = %d, want 7 after set", k.Score)
	}
}

func TestNotificationUnreadFlow(t *testing.T) {
	db := setupTestDB(t)
	user := createReportUser(t, NewUserStore(db), "a@example.com")
	notifications := NewNotificationStore(db)

	first, err := notifications.Create(user.ID, "You've earned 10 points for garbage reporting", "reward")
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if _, err := notifications.Create(user.ID, "You've earned 15 points for collecting waste", "reward"); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	unread, err := notifications.ListUnread(user.ID)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 2 {
		t.Fatalf("unread = %d, want 2", len(unread))
	}

	if err := notifications.MarkRead(first.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	unread, err = notifications.ListUnread(user.ID)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 {
		t.Errorf("unread = %d, want 1 after mark read", len(unread))
	}
}

func TestCollectedWasteOncePerReport(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)
	user := createReportUser(t, users, "a@example.com")
	collector := createReportUser(t, users, "c@example.com")

	report, err := NewReportStore(db).Create(CreateReportParams{UserID: user.ID, Location: "x", WasteType: "plastic", Amount: "1 bag"})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}

	cw := NewCollectedWasteStore(db)
	record, err := cw.Create(report.ID, collector.ID)
	if err != nil {
		t.Fatalf("create collected waste: %v", err)
	}
	if record.Status != "collected" {
		t.Errorf("status = %q, want collected", record.Status)
	}

	if _, err := cw.Create(report.ID, collector.ID); err == nil {
		t.Error("expected unique violation for second collection of same report")
	}

	got, err := cw.GetByReport(report.ID)
	if err != nil {
		t.Fatalf("get by report: %v", err)
	}
	if got == nil || got.ID != record.ID {
		t.Fatalf("get by report = %+v, want record %d", got, record.ID)
	}
}
