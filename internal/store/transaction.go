package store

import (
	"database/sql"
	"fmt"

	"github.com/pawlurking/greencop/internal/model"
)

// TransactionStore appends to and reads the point ledger. There are no update
// or delete methods: the ledger is append-only.
type TransactionStore struct {
	db DBTX
}

func NewTransactionStore(db DBTX) *TransactionStore {
	return &TransactionStore{db: db}
}

const transactionCols = `id, user_id, type, amount, description, date`

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var typ string
	err := scanner.Scan(&t.ID, &t.UserID, &typ, &t.Amount, &t.Description, &t.Date)
	if err != nil {
		return nil, err
	}
	t.Type = model.TransactionType(typ)
	return &t, nil
}

func (s *TransactionStore) Create(userID int64, typ model.TransactionType, amount int, description string) (*model.Transaction, error) {
	result, err := s.db.Exec(
		`INSERT INTO transactions (user_id, type, amount, description) VALUES (?, ?, ?, ?)`,
		userID, string(typ), amount, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListByUser returns the user's full transaction history, newest first. The
// balance fold runs over this complete log, never a truncated window.
func (s *TransactionStore) ListByUser(userID int64) ([]model.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT `+transactionCols+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListRecentByUser returns the newest limit transactions for display.
func (s *TransactionStore) ListRecentByUser(userID int64, limit int) ([]model.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT `+transactionCols+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
