package store

import (
	"database/sql"
	"fmt"

	"github.com/pawlurking/greencop/internal/model"
)

type NotificationStore struct {
	db DBTX
}

func NewNotificationStore(db DBTX) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationCols = `id, user_id, message, type, is_read, created_at`

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var isRead int
	err := scanner.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &isRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.IsRead = isRead != 0
	return &n, nil
}

func (s *NotificationStore) Create(userID int64, message, typ string) (*model.Notification, error) {
	result, err := s.db.Exec(
		`INSERT INTO notifications (user_id, message, type) VALUES (?, ?, ?)`,
		userID, message, typ,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) GetByID(id int64) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) ListUnread(userID int64) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM notifications WHERE user_id = ? AND is_read = 0 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkRead flips the read flag. The only mutation notifications ever see.
func (s *NotificationStore) MarkRead(id int64) error {
	_, err := s.db.Exec(`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
