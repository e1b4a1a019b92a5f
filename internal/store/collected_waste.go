package store

import (
	"database/sql"
	"fmt"

	"github.com/pawlurking/greencop/internal/model"
)

type CollectedWasteStore struct {
	db DBTX
}

func NewCollectedWasteStore(db DBTX) *CollectedWasteStore {
	return &CollectedWasteStore{db: db}
}

const collectedWasteCols = `id, report_id, collector_id, collection_date, status`

func scanCollectedWaste(scanner interface{ Scan(...any) error }) (*model.CollectedWaste, error) {
	var c model.CollectedWaste
	err := scanner.Scan(&c.ID, &c.ReportID, &c.CollectorID, &c.CollectionDate, &c.Status)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create records a collection. The UNIQUE constraint on report_id makes this
// once-per-report; a second insert for the same report fails at the store.
func (s *CollectedWasteStore) Create(reportID, collectorID int64) (*model.CollectedWaste, error) {
	result, err := s.db.Exec(
		`INSERT INTO collected_waste (report_id, collector_id) VALUES (?, ?)`,
		reportID, collectorID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert collected waste: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+collectedWasteCols+` FROM collected_waste WHERE id = ?`, id)
	c, err := scanCollectedWaste(row)
	if err != nil {
		return nil, fmt.Errorf("get collected waste: %w", err)
	}
	return c, nil
}

func (s *CollectedWasteStore) GetByReport(reportID int64) (*model.CollectedWaste, error) {
	row := s.db.QueryRow(`SELECT `+collectedWasteCols+` FROM collected_waste WHERE report_id = ?`, reportID)
	c, err := scanCollectedWaste(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collected waste by report: %w", err)
	}
	return c, nil
}

func (s *CollectedWasteStore) ListByCollector(collectorID int64) ([]model.CollectedWaste, error) {
	rows, err := s.db.Query(
		`SELECT `+collectedWasteCols+` FROM collected_waste WHERE collector_id = ? ORDER BY collection_date DESC, id DESC`,
		collectorID,
	)
	if err != nil {
		return nil, fmt.Errorf("list collected waste: %w", err)
	}
	defer rows.Close()

	var records []model.CollectedWaste
	for rows.Next() {
		c, err := scanCollectedWaste(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collected waste: %w", err)
		}
		records = append(records, *c)
	}
	return records, rows.Err()
}
