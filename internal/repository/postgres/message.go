package postgres

import (
	"context"
	"database/sql"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"
)

// MessageRepo implements repository.MessageRepository
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// AppendMessage stores a message and returns its id.
// to_id is not checked against users; callers validate it.
func (r *MessageRepo) AppendMessage(ctx context.Context, fromID, toID int64, body string) (int64, error) {
	var id int64
	query := `
		INSERT INTO messages (from_id, to_id, body)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, fromID, toID, body).Scan(&id); err != nil {
		return 0, repository.Wrap("append_message", err)
	}
	return id, nil
}

// ListThread returns messages exchanged between userA and userB, newest first
func (r *MessageRepo) ListThread(ctx context.Context, userA, userB int64, limit, offset int) ([]domain.ThreadMessage, error) {
	query := `
		SELECT m.id, m.from_id, m.to_id, m.body, m.sent_at, m.is_read, u.username, COALESCE(u.full_name, '')
		FROM messages m
		LEFT JOIN users u ON u.user_id = m.from_id
		WHERE (m.from_id = $1 AND m.to_id = $2) OR (m.from_id = $2 AND m.to_id = $1)
		ORDER BY m.id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, userA, userB, limit, offset)
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

// CountThread returns the number of messages between userA and userB
func (r *MessageRepo) CountThread(ctx context.Context, userA, userB int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM messages
		WHERE (from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1)
	`
	if err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(&count); err != nil {
		return 0, repository.Wrap("count_thread", err)
	}
	return count, nil
}

// ListCounterparties returns distinct non-admin users who exchanged at least
// one message with adminID, most recently active first
func (r *MessageRepo) ListCounterparties(ctx context.Context, adminID int64) ([]domain.Counterparty, error) {
	query := `
		SELECT u.user_id, u.username, u.full_name, u.registration_date, u.is_blocked, u.is_admin,
			SUM(CASE WHEN m.to_id = $1 AND m.is_read = FALSE THEN 1 ELSE 0 END) AS unread
		FROM messages m
		JOIN users u ON u.user_id = CASE WHEN m.from_id = $1 THEN m.to_id ELSE m.from_id END
		WHERE (m.from_id = $1 OR m.to_id = $1)
			AND u.user_id <> $1
			AND u.is_admin = FALSE
		GROUP BY u.user_id, u.username, u.full_name, u.registration_date, u.is_blocked, u.is_admin
		ORDER BY MAX(m.id) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, adminID)
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

// MarkThreadRead flags messages from otherID to readerID as read
func (r *MessageRepo) MarkThreadRead(ctx context.Context, readerID, otherID int64) error {
	query := `
		UPDATE messages SET is_read = TRUE
		WHERE to_id = $1 AND from_id = $2 AND is_read = FALSE
	`
	_, err := r.db.ExecContext(ctx, query, readerID, otherID)
	return repository.Wrap("mark_thread_read", err)
}

// EraseThread deletes every message between userA and userB in either direction
func (r *MessageRepo) EraseThread(ctx context.Context, userA, userB int64) (int64, error) {
	query := `
		DELETE FROM messages
		WHERE (from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1)
	`
	res, err := r.db.ExecContext(ctx, query, userA, userB)
	if err != nil {
		return 0, repository.Wrap("erase_thread", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, repository.Wrap("erase_thread", err)
	}
	return n, nil
}
