package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pawlurking/greencop/internal/metrics"
	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/store"
)

// Default game rules, overridable through config.
const (
	DefaultReportPoints  = 10
	DefaultCollectPoints = 15
)

type ReportService struct {
	db            *sql.DB
	logger        *slog.Logger
	reportPoints  int
	collectPoints int
}

func NewReportService(db *sql.DB, logger *slog.Logger, reportPoints, collectPoints int) *ReportService {
	if reportPoints <= 0 {
		reportPoints = DefaultReportPoints
	}
	if collectPoints <= 0 {
		collectPoints = DefaultCollectPoints
	}
	return &ReportService{db: db, logger: logger, reportPoints: reportPoints, collectPoints: collectPoints}
}

type CreateReportParams struct {
	UserID          int64
	Location        string
	WasteType       string
	Amount          string
	ImageURL        *string
	InferenceResult *model.InferenceResult
	// SubmissionKey deduplicates retries: two submissions with the same key
	// yield one report and one point award.
	SubmissionKey string
}

// CreateReport inserts the report and awards the reporting points as one
// transaction: report, karma, ledger entry, and notification land together or
// not at all.
func (s *ReportService) CreateReport(ctx context.Context, p CreateReportParams) (*model.Report, error) {
	p.Location = strings.TrimSpace(p.Location)
	p.WasteType = strings.TrimSpace(p.WasteType)
	p.Amount = strings.TrimSpace(p.Amount)

	if p.Location == "" {
		return nil, validationf("location", "must not be empty")
	}
	if p.WasteType == "" {
		return nil, validationf("waste_type", "must not be empty")
	}
	if p.Amount == "" {
		return nil, validationf("amount", "must not be empty")
	}

	if p.SubmissionKey != "" {
		existing, err := store.NewReportStore(s.db).GetBySubmissionKey(p.SubmissionKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	var report *model.Report
	err := store.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		user, err := store.NewUserStore(tx).GetByID(p.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", p.UserID, ErrNotFound)
		}

		r, err := store.NewReportStore(tx).Create(store.CreateReportParams{
			UserID:          p.UserID,
			Location:        p.Location,
			WasteType:       p.WasteType,
			Amount:          p.Amount,
			ImageURL:        p.ImageURL,
			InferenceResult: p.InferenceResult,
			SubmissionKey:   p.SubmissionKey,
		})
		if err != nil {
			return err
		}

		if _, err := awardPoints(tx, p.UserID, s.reportPoints, model.TransactionEarnedReport, "garbage reporting"); err != nil {
			return err
		}

		report = r
		return nil
	})
	if err != nil {
		// A concurrent retry with the same key loses the UNIQUE race; the
		// winner's report is the result either way.
		if p.SubmissionKey != "" && isUniqueViolation(err) {
			if existing, getErr := store.NewReportStore(s.db).GetBySubmissionKey(p.SubmissionKey); getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	metrics.ReportsSubmitted.Inc()
	metrics.PointsAwarded.WithLabelValues(string(model.TransactionEarnedReport)).Add(float64(s.reportPoints))
	s.logger.Info("report created", "report_id", report.ID, "user_id", p.UserID, "waste_type", p.WasteType)
	return report, nil
}

func (s *ReportService) GetRecentReports(ctx context.Context, limit int) ([]model.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return store.NewReportStore(s.db).ListRecent(limit)
}

// GetWasteCollectionTasks lists reports still in the collection workflow.
func (s *ReportService) GetWasteCollectionTasks(ctx context.Context, limit int) ([]model.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return store.NewReportStore(s.db).ListOpenTasks(limit)
}

// UpdateTaskStatus moves a report through the collection lifecycle. Repeating
// the current status is an idempotent no-op; anything outside the transition
// table is rejected.
func (s *ReportService) UpdateTaskStatus(ctx context.Context, reportID int64, newStatus model.ReportStatus, collectorID *int64) (*model.Report, error) {
	if !ValidStatus(newStatus) {
		return nil, validationf("status", "unknown status %q", newStatus)
	}

	var updated *model.Report
	err := store.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		rs := store.NewReportStore(tx)
		report, err := rs.GetByID(reportID)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("report %d: %w", reportID, ErrNotFound)
		}

		if collectorID != nil {
			if report.CollectorID != nil && *report.CollectorID != *collectorID {
				return validationf("collector_id", "report already assigned to collector %d", *report.CollectorID)
			}
		}

		if report.Status == newStatus {
			if collectorID == nil || report.CollectorID != nil {
				updated = report
				return nil
			}
		} else if !CanTransition(report.Status, newStatus) {
			return fmt.Errorf("%s -> %s: %w", report.Status, newStatus, ErrInvalidTransition)
		}

		updated, err = rs.UpdateStatus(reportID, newStatus, collectorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task status updated", "report_id", reportID, "status", string(newStatus))
	return updated, nil
}

// SaveCollectedWaste records the collection join row, marks the report
// collected, and awards the collection points in one transaction. The UNIQUE
// constraint on report_id makes a repeat call return the existing record
// without a second award.
func (s *ReportService) SaveCollectedWaste(ctx context.Context, reportID, collectorID int64) (*model.CollectedWaste, error) {
	var record *model.CollectedWaste
	awarded := false

	err := store.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		awarded = false
		cws := store.NewCollectedWasteStore(tx)

		existing, err := cws.GetByReport(reportID)
		if err != nil {
			return err
		}
		if existing != nil {
			record = existing
			return nil
		}

		rs := store.NewReportStore(tx)
		report, err := rs.GetByID(reportID)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("report %d: %w", reportID, ErrNotFound)
		}
		if report.CollectorID != nil && *report.CollectorID != collectorID {
			return validationf("collector_id", "report already assigned to collector %d", *report.CollectorID)
		}
		if report.Status != model.ReportStatusCollected && !CanTransition(report.Status, model.ReportStatusCollected) {
			return fmt.Errorf("%s -> %s: %w", report.Status, model.ReportStatusCollected, ErrInvalidTransition)
		}

		record, err = cws.Create(reportID, collectorID)
		if err != nil {
			return err
		}
		if _, err := rs.UpdateStatus(reportID, model.ReportStatusCollected, &collectorID); err != nil {
			return err
		}

		if _, err := awardPoints(tx, collectorID, s.collectPoints, model.TransactionEarnedCollect, "collecting waste"); err != nil {
			return err
		}
		awarded = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if awarded {
		metrics.WasteCollected.Inc()
		metrics.PointsAwarded.WithLabelValues(string(model.TransactionEarnedCollect)).Add(float64(s.collectPoints))
		s.logger.Info("waste collected", "report_id", reportID, "collector_id", collectorID)
	}
	return record, nil
}

// SaveReward awards collection points outside the collection flow, for manual
// corrections by an operator.
func (s *ReportService) SaveReward(ctx context.Context, collectorID int64, amount int) (*model.Transaction, error) {
	var awardedTx *model.Transaction
	err := store.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := awardPoints(tx, collectorID, amount, model.TransactionEarnedCollect, "collecting waste")
		if err != nil {
			return err
		}
		awardedTx = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.PointsAwarded.WithLabelValues(string(model.TransactionEarnedCollect)).Add(float64(amount))
	return awardedTx, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
