package service

import (
	"context"
	"strings"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"

	"go.uber.org/zap"
)

// RelayService stores messages between users and administrators.
// Storage happens before any notification; delivery is left to the caller
// and may fail without affecting what was recorded.
type RelayService struct {
	access      *AccessService
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	logger      *zap.Logger
}

// NewRelayService creates a new relay service
func NewRelayService(
	access *AccessService,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	logger *zap.Logger,
) *RelayService {
	return &RelayService{
		access:      access,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// Submission is the outcome of a stored user message
type Submission struct {
	MessageID  int64
	PrimaryID  int64   // admin the message is addressed to
	Recipients []int64 // admins to notify, sender excluded
}

// Submit records a message from sender to the support channel
func (s *RelayService) Submit(ctx context.Context, sender int64, body string) (*Submission, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}

	blocked, err := s.access.IsBlocked(ctx, sender)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, domain.ErrBlocked
	}

	admins, err := s.access.AdminIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, domain.ErrNoAdmins
	}

	id, err := s.messageRepo.AppendMessage(ctx, sender, admins[0], body)
	if err != nil {
		return nil, err
	}

	recipients := make([]int64, 0, len(admins))
	for _, adminID := range admins {
		if adminID != sender {
			recipients = append(recipients, adminID)
		}
	}

	s.logger.Info("User message stored",
		zap.Int64("message_id", id),
		zap.Int64("user_id", sender),
		zap.Int64("to_id", admins[0]),
	)

	return &Submission{MessageID: id, PrimaryID: admins[0], Recipients: recipients}, nil
}

// Reply records an admin answer to target
func (s *RelayService) Reply(ctx context.Context, adminID, target int64, body string) (int64, error) {
	if err := s.access.Authorize(ctx, adminID); err != nil {
		return 0, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return 0, domain.ErrEmptyMessage
	}

	// to_id has no foreign key, so the recipient is checked here
	user, err := s.userRepo.GetUser(ctx, target)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, domain.ErrUserNotFound
	}

	id, err := s.messageRepo.AppendMessage(ctx, adminID, target, body)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Admin reply stored",
		zap.Int64("message_id", id),
		zap.Int64("admin_id", adminID),
		zap.Int64("user_id", target),
	)
	return id, nil
}
