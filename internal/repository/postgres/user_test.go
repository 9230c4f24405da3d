package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"user_id", "username", "full_name", "registration_date", "is_blocked", "is_admin"}

func TestUserRepo_UpsertUser(t *testing.T) {
	tests := []struct {
		name       string
		user       domain.User
		forceAdmin bool
		username   interface{}
		insertFlag bool
	}{
		{
			name:       "regular user",
			user:       domain.User{UserID: 100, Username: "alice", FullName: "Alice"},
			forceAdmin: false,
			username:   "alice",
			insertFlag: false,
		},
		{
			name:       "bootstrap admin",
			user:       domain.User{UserID: 1, Username: "boss", FullName: "Boss"},
			forceAdmin: true,
			username:   "boss",
			insertFlag: true,
		},
		{
			name:       "admin hint without username",
			user:       domain.User{UserID: 5, FullName: "Unknown", IsAdmin: true},
			forceAdmin: false,
			username:   nil,
			insertFlag: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			mock.ExpectExec("INSERT INTO users .* ON CONFLICT \\(user_id\\)").
				WithArgs(tt.user.UserID, tt.username, tt.user.FullName, tt.insertFlag, tt.forceAdmin).
				WillReturnResult(sqlmock.NewResult(0, 1))

			err = repo.UpsertUser(context.Background(), tt.user, tt.forceAdmin)

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_UpsertUser_StorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(fmt.Errorf("connection reset"))

	err = repo.UpsertUser(context.Background(), domain.User{UserID: 1}, false)

	var storageErr *repository.StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "upsert_user", storageErr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetUser(t *testing.T) {
	registered := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		userID        int64
		mockRows      *sqlmock.Rows
		mockError     error
		expectedUser  *domain.User
		expectedError bool
	}{
		{
			name:   "user found",
			userID: 100,
			mockRows: sqlmock.NewRows(userColumns).
				AddRow(100, "alice", "Alice", registered, false, false),
			expectedUser: &domain.User{
				UserID: 100, Username: "alice", FullName: "Alice", RegistrationDate: registered,
			},
		},
		{
			name:   "user without username",
			userID: 101,
			mockRows: sqlmock.NewRows(userColumns).
				AddRow(101, nil, "Bob", registered, true, false),
			expectedUser: &domain.User{
				UserID: 101, FullName: "Bob", RegistrationDate: registered, IsBlocked: true,
			},
		},
		{
			name:         "user not exists",
			userID:       102,
			mockError:    sql.ErrNoRows,
			expectedUser: nil,
		},
		{
			name:          "database error",
			userID:        103,
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			expect := mock.ExpectQuery("SELECT user_id, username, full_name, registration_date, is_blocked, is_admin FROM users WHERE user_id = \\$1").
				WithArgs(tt.userID)
			if tt.mockError != nil {
				expect.WillReturnError(tt.mockError)
			} else {
				expect.WillReturnRows(tt.mockRows)
			}

			user, err := repo.GetUser(context.Background(), tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedUser, user)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_IsBlocked(t *testing.T) {
	tests := []struct {
		name     string
		mockRows *sqlmock.Rows
		expected bool
	}{
		{
			name:     "blocked user",
			mockRows: sqlmock.NewRows([]string{"is_blocked"}).AddRow(true),
			expected: true,
		},
		{
			name:     "active user",
			mockRows: sqlmock.NewRows([]string{"is_blocked"}).AddRow(false),
			expected: false,
		},
		{
			name:     "absent user",
			mockRows: sqlmock.NewRows([]string{"is_blocked"}),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			mock.ExpectQuery("SELECT is_blocked FROM users WHERE user_id = \\$1").
				WithArgs(int64(100)).
				WillReturnRows(tt.mockRows)

			blocked, err := repo.IsBlocked(context.Background(), 100)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, blocked)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_IsAdmin_AbsentUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT is_admin FROM users WHERE user_id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}))

	admin, err := repo.IsAdmin(context.Background(), 7)

	assert.NoError(t, err)
	assert.False(t, admin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetFlags(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET is_blocked = \\$2 WHERE user_id = \\$1").
		WithArgs(int64(100), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET is_admin = \\$2 WHERE user_id = \\$1").
		WithArgs(int64(100), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetBlocked(context.Background(), 100, true))
	assert.NoError(t, repo.SetAdmin(context.Background(), 100, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ListAdmins(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT user_id FROM users WHERE is_admin = TRUE").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(42))

	ids, err := repo.ListAdmins(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 42}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
