package repository

import (
	"context"

	"feedbackbot/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	// UpsertUser inserts u if absent. Names are written on insert only;
	// when forceAdmin is set an existing row is promoted as well.
	UpsertUser(ctx context.Context, u domain.User, forceAdmin bool) error
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
	SetAdmin(ctx context.Context, userID int64, admin bool) error
	IsBlocked(ctx context.Context, userID int64) (bool, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	// ListAdmins returns stored admin ids only; bootstrap admins that never
	// contacted the bot are not included.
	ListAdmins(ctx context.Context) ([]int64, error)
}

// MessageRepository defines message data operations
type MessageRepository interface {
	AppendMessage(ctx context.Context, fromID, toID int64, body string) (int64, error)
	ListThread(ctx context.Context, userA, userB int64, limit, offset int) ([]domain.ThreadMessage, error)
	CountThread(ctx context.Context, userA, userB int64) (int, error)
	ListCounterparties(ctx context.Context, adminID int64) ([]domain.Counterparty, error)
	MarkThreadRead(ctx context.Context, readerID, otherID int64) error
	EraseThread(ctx context.Context, userA, userB int64) (int64, error)
}
