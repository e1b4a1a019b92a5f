package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pawlurking/greencop/internal/model"
)

type ReportStore struct {
	db DBTX
}

func NewReportStore(db DBTX) *ReportStore {
	return &ReportStore{db: db}
}

const reportCols = `id, user_id, location, waste_type, amount, image_url, inference_result, status, created_at, collector_id, submission_key`

func scanReport(scanner interface{ Scan(...any) error }) (*model.Report, error) {
	var r model.Report
	var imageURL sql.NullString
	var inference sql.NullString
	var collectorID sql.NullInt64
	var submissionKey sql.NullString
	var status string

	err := scanner.Scan(&r.ID, &r.UserID, &r.Location, &r.WasteType, &r.Amount,
		&imageURL, &inference, &status, &r.CreatedAt, &collectorID, &submissionKey)
	if err != nil {
		return nil, err
	}

	r.Status = model.ReportStatus(status)
	if imageURL.Valid {
		r.ImageURL = &imageURL.String
	}
	if collectorID.Valid {
		r.CollectorID = &collectorID.Int64
	}
	if submissionKey.Valid {
		r.SubmissionKey = submissionKey.String
	}
	if inference.Valid && inference.String != "" {
		var ir model.InferenceResult
		if err := json.Unmarshal([]byte(inference.String), &ir); err != nil {
			return nil, fmt.Errorf("decode inference result: %w", err)
		}
		r.InferenceResult = &ir
	}
	return &r, nil
}

type CreateReportParams struct {
	UserID          int64
	Location        string
	WasteType       string
	Amount          string
	ImageURL        *string
	InferenceResult *model.InferenceResult
	SubmissionKey   string
}

func (s *ReportStore) Create(p CreateReportParams) (*model.Report, error) {
	var imageURL sql.NullString
	if p.ImageURL != nil {
		imageURL = sql.NullString{String: *p.ImageURL, Valid: true}
	}

	var inference sql.NullString
	if p.InferenceResult != nil {
		data, err := json.Marshal(p.InferenceResult)
		if err != nil {
			return nil, fmt.Errorf("encode inference result: %w", err)
		}
		inference = sql.NullString{String: string(data), Valid: true}
	}

	var submissionKey sql.NullString
	if p.SubmissionKey != "" {
		submissionKey = sql.NullString{String: p.SubmissionKey, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO reports (user_id, location, waste_type, amount, image_url, inference_result, submission_key) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Location, p.WasteType, p.Amount, imageURL, inference, submissionKey,
	)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReportStore) GetByID(id int64) (*model.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportCols+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

func (s *ReportStore) GetBySubmissionKey(key string) (*model.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportCols+` FROM reports WHERE submission_key = ?`, key)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report by submission key: %w", err)
	}
	return r, nil
}

// ListRecent returns the newest reports first, capped at limit.
func (s *ReportStore) ListRecent(limit int) ([]model.Report, error) {
	rows, err := s.db.Query(`SELECT `+reportCols+` FROM reports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent reports: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

// ListOpenTasks returns reports still in the collection workflow (anything not
// yet verified), oldest first so collectors see long-standing reports.
func (s *ReportStore) ListOpenTasks(limit int) ([]model.Report, error) {
	rows, err := s.db.Query(
		`SELECT `+reportCols+` FROM reports WHERE status IN (?, ?, ?) ORDER BY created_at ASC, id ASC LIMIT ?`,
		string(model.ReportStatusPending), string(model.ReportStatusInProgress), string(model.ReportStatusCollected), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer rows.Close()
	return collectReports(rows)
}

func collectReports(rows *sql.Rows) ([]model.Report, error) {
	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// UpdateStatus sets the report status and, when collectorID is non-nil, the
// collector assignment. Legal-transition checks live in the service layer.
func (s *ReportStore) UpdateStatus(id int64, status model.ReportStatus, collectorID *int64) (*model.Report, error) {
	var err error
	if collectorID != nil {
		_, err = s.db.Exec(`UPDATE reports SET status = ?, collector_id = ? WHERE id = ?`, string(status), *collectorID, id)
	} else {
		_, err = s.db.Exec(`UPDATE reports SET status = ? WHERE id = ?`, string(status), id)
	}
	if err != nil {
		return nil, fmt.Errorf("update report status: %w", err)
	}
	return s.GetByID(id)
}
