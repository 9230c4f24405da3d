package testutil

import (
	"context"

	"feedbackbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) UpsertUser(ctx context.Context, u domain.User, forceAdmin bool) error {
	args := m.Called(ctx, u, forceAdmin)
	return args.Error(0)
}

func (m *MockUserRepository) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	args := m.Called(ctx, userID, blocked)
	return args.Error(0)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	args := m.Called(ctx, userID, admin)
	return args.Error(0)
}

func (m *MockUserRepository) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListAdmins(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockMessageRepository is a mock for MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) AppendMessage(ctx context.Context, fromID, toID int64, body string) (int64, error) {
	args := m.Called(ctx, fromID, toID, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) ListThread(ctx context.Context, userA, userB int64, limit, offset int) ([]domain.ThreadMessage, error) {
	args := m.Called(ctx, userA, userB, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ThreadMessage), args.Error(1)
}

func (m *MockMessageRepository) CountThread(ctx context.Context, userA, userB int64) (int, error) {
	args := m.Called(ctx, userA, userB)
	return args.Int(0), args.Error(1)
}

func (m *MockMessageRepository) ListCounterparties(ctx context.Context, adminID int64) ([]domain.Counterparty, error) {
	args := m.Called(ctx, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Counterparty), args.Error(1)
}

func (m *MockMessageRepository) MarkThreadRead(ctx context.Context, readerID, otherID int64) error {
	args := m.Called(ctx, readerID, otherID)
	return args.Error(0)
}

func (m *MockMessageRepository) EraseThread(ctx context.Context, userA, userB int64) (int64, error) {
	args := m.Called(ctx, userA, userB)
	return args.Get(0).(int64), args.Error(1)
}
