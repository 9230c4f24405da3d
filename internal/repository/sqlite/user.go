package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"
)

// UserRepo implements repository.UserRepository on SQLite
type UserRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

// UpsertUser creates the user on first contact without touching names later
func (r *UserRepo) UpsertUser(ctx context.Context, u domain.User, forceAdmin bool) error {
	query := `
		INSERT INTO users (user_id, username, full_name, registration_date, is_admin)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id)
		DO UPDATE SET is_admin = CASE WHEN ? THEN 1 ELSE users.is_admin END
	`
	var username sql.NullString
	if u.Username != "" {
		username = sql.NullString{String: u.Username, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query,
		u.UserID, username, u.FullName, r.now().UTC(), u.IsAdmin || forceAdmin, forceAdmin,
	)
	return repository.Wrap("upsert_user", err)
}

// GetUser returns nil when the user does not exist
func (r *UserRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var u domain.User
	var username sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, full_name, registration_date, is_blocked, is_admin
		FROM users WHERE user_id = ?
	`, userID).Scan(&u.UserID, &username, &u.FullName, &u.RegistrationDate, &u.IsBlocked, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, repository.Wrap("get_user", err)
	}
	u.Username = username.String
	return &u, nil
}

func (r *UserRepo) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_blocked = ? WHERE user_id = ?`, blocked, userID)
	return repository.Wrap("set_blocked", err)
}

func (r *UserRepo) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_admin = ? WHERE user_id = ?`, admin, userID)
	return repository.Wrap("set_admin", err)
}

func (r *UserRepo) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	return r.flag(ctx, "is_blocked", `SELECT is_blocked FROM users WHERE user_id = ?`, userID)
}

func (r *UserRepo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return r.flag(ctx, "is_admin", `SELECT is_admin FROM users WHERE user_id = ?`, userID)
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

func (r *UserRepo) ListAdmins(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM users WHERE is_admin = 1 ORDER BY user_id`)
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
