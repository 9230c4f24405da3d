package sqlite

import (
	"context"
	"database/sql"
	"time"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"
)

// MessageRepo implements repository.MessageRepository on SQLite
type MessageRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db, now: time.Now}
}

func (r *MessageRepo) AppendMessage(ctx context.Context, fromID, toID int64, body string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (from_id, to_id, body, sent_at)
		VALUES (?, ?, ?, ?)
	`, fromID, toID, body, r.now().UTC())
	if err != nil {
		return 0, repository.Wrap("append_message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, repository.Wrap("append_message", err)
	}
	return id, nil
}

// ListThread returns messages strictly between userA and userB, newest first
func (r *MessageRepo) ListThread(ctx context.Context, userA, userB int64, limit, offset int) ([]domain.ThreadMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.from_id, m.to_id, m.body, m.sent_at, m.is_read, u.username, COALESCE(u.full_name, '')
		FROM messages m
		LEFT JOIN users u ON u.user_id = m.from_id
		WHERE (m.from_id = ? AND m.to_id = ?) OR (m.from_id = ? AND m.to_id = ?)
		ORDER BY m.id DESC
		LIMIT ? OFFSET ?
	`, userA, userB, userB, userA, limit, offset)
	if err != nil {
		return nil, repository.Wrap("list_thread", err)
	}
	defer rows.Close()

	var thread []domain.ThreadMessage
	for rows.Next() {
		var m domain.ThreadMessage
		var username sql.NullString
		if err := rows.Scan(
			&m.ID, &m.FromID, &m.ToID, &m.Body, &m.SentAt, &m.IsRead, &username, &m.SenderFullName,
		); err != nil {
			return nil, repository.Wrap("list_thread", err)
		}
		m.SenderUsername = username.String
		thread = append(thread, m)
	}
	return thread, repository.Wrap("list_thread", rows.Err())
}

func (r *MessageRepo) CountThread(ctx context.Context, userA, userB int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE (from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)
	`, userA, userB, userB, userA).Scan(&count)
	if err != nil {
		return 0, repository.Wrap("count_thread", err)
	}
	return count, nil
}

func (r *MessageRepo) ListCounterparties(ctx context.Context, adminID int64) ([]domain.Counterparty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.user_id, u.username, u.full_name, u.registration_date, u.is_blocked, u.is_admin,
			SUM(CASE WHEN m.to_id = ? AND m.is_read = 0 THEN 1 ELSE 0 END) AS unread
		FROM messages m
		JOIN users u ON u.user_id = CASE WHEN m.from_id = ? THEN m.to_id ELSE m.from_id END
		WHERE (m.from_id = ? OR m.to_id = ?)
			AND u.user_id <> ?
			AND u.is_admin = 0
		GROUP BY u.user_id
		ORDER BY MAX(m.id) DESC
	`, adminID, adminID, adminID, adminID, adminID)
	if err != nil {
		return nil, repository.Wrap("list_counterparties", err)
	}
	defer rows.Close()

	var result []domain.Counterparty
	for rows.Next() {
		var c domain.Counterparty
		var username sql.NullString
		if err := rows.Scan(
			&c.UserID, &username, &c.FullName, &c.RegistrationDate, &c.IsBlocked, &c.IsAdmin, &c.Unread,
		); err != nil {
			return nil, repository.Wrap("list_counterparties", err)
		}
		c.Username = username.String
		result = append(result, c)
	}
	return result, repository.Wrap("list_counterparties", rows.Err())
}

func (r *MessageRepo) MarkThreadRead(ctx context.Context, readerID, otherID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE to_id = ? AND from_id = ? AND is_read = 0
	`, readerID, otherID)
	return repository.Wrap("mark_thread_read", err)
}

// EraseThread deletes the whole thread in both directions
func (r *MessageRepo) EraseThread(ctx context.Context, userA, userB int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM messages
		WHERE (from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)
	`, userA, userB, userB, userA)
	if err != nil {
		return 0, repository.Wrap("erase_thread", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, repository.Wrap("erase_thread", err)
	}
	return n, nil
}
