package testutil

import (
	"time"

	"feedbackbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(userID int64, username, fullName string) *domain.User {
	return &domain.User{
		UserID:           userID,
		Username:         username,
		FullName:         fullName,
		RegistrationDate: time.Now(),
	}
}

// NewTestMessage creates a thread message
func NewTestMessage(id, fromID, toID int64, body string) domain.ThreadMessage {
	return domain.ThreadMessage{
		Message: domain.Message{
			ID:     id,
			FromID: fromID,
			ToID:   toID,
			Body:   body,
			SentAt: time.Now(),
		},
	}
}
