package postgres

import (
	"context"
	"database/sql"
	"errors"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// UpsertUser creates the user on first contact. Names are never overwritten;
// forceAdmin promotes an existing row in the same statement.
func (r *UserRepo) UpsertUser(ctx context.Context, u domain.User, forceAdmin bool) error {
	query := `
		INSERT INTO users (user_id, username, full_name, is_admin)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET is_admin = users.is_admin OR $5
	`
	_, err := r.db.ExecContext(ctx, query,
		u.UserID, nullString(u.Username), u.FullName, u.IsAdmin || forceAdmin, forceAdmin,
	)
	return repository.Wrap("upsert_user", err)
}

// GetUser returns nil when the user does not exist
func (r *UserRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var u domain.User
	var username sql.NullString
	query := `
		SELECT user_id, username, full_name, registration_date, is_blocked, is_admin
		FROM users
		WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.UserID, &username, &u.FullName, &u.RegistrationDate, &u.IsBlocked, &u.IsAdmin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Wrap("get_user", err)
	}

	u.Username = username.String
	return &u, nil
}

// SetBlocked sets or clears the block flag
func (r *UserRepo) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	query := `UPDATE users SET is_blocked = $2 WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, blocked)
	return repository.Wrap("set_blocked", err)
}

// SetAdmin sets or clears the stored admin flag
func (r *UserRepo) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	query := `UPDATE users SET is_admin = $2 WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, admin)
	return repository.Wrap("set_admin", err)
}

// IsBlocked returns false for unknown users
func (r *UserRepo) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	return r.flag(ctx, "is_blocked", `SELECT is_blocked FROM users WHERE user_id = $1`, userID)
}

// IsAdmin returns the stored flag only, false for unknown users
func (r *UserRepo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return r.flag(ctx, "is_admin", `SELECT is_admin FROM users WHERE user_id = $1`, userID)
}

func (r *UserRepo) flag(ctx context.Context, op, query string, userID int64) (bool, error) {
	var v bool
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, repository.Wrap(op, err)
	}
	return v, nil
}

// ListAdmins returns ids of users with the stored admin flag
func (r *UserRepo) ListAdmins(ctx context.Context) ([]int64, error) {
	query := `SELECT user_id FROM users WHERE is_admin = TRUE ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, repository.Wrap("list_admins", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, repository.Wrap("list_admins", err)
		}
		ids = append(ids, id)
	}
	return ids, repository.Wrap("list_admins", rows.Err())
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
