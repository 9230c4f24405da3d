package service

import (
	"context"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"

	"go.uber.org/zap"
)

// DialogService derives conversation views from stored messages
type DialogService struct {
	access      *AccessService
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	logger      *zap.Logger
}

// NewDialogService creates a new dialog service
func NewDialogService(
	access *AccessService,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	logger *zap.Logger,
) *DialogService {
	return &DialogService{
		access:      access,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// Counterparties returns one clamped page of users the admin talked to
func (s *DialogService) Counterparties(ctx context.Context, adminID int64, page int) (domain.Page[domain.Counterparty], error) {
	if err := s.access.Authorize(ctx, adminID); err != nil {
		return domain.Page[domain.Counterparty]{}, err
	}

	parties, err := s.messageRepo.ListCounterparties(ctx, adminID)
	if err != nil {
		return domain.Page[domain.Counterparty]{}, err
	}

	return domain.Paginate(parties, page, domain.PageSize), nil
}

// Thread returns one page of the admin's thread with userID, newest first,
// and marks the user's messages as read
func (s *DialogService) Thread(ctx context.Context, adminID, userID int64, page int) (domain.Page[domain.ThreadMessage], error) {
	if err := s.access.Authorize(ctx, adminID); err != nil {
		return domain.Page[domain.ThreadMessage]{}, err
	}

	result, err := s.thread(ctx, adminID, userID, page)
	if err != nil {
		return result, err
	}

	if err := s.messageRepo.MarkThreadRead(ctx, adminID, userID); err != nil {
		return result, err
	}
	return result, nil
}

// UserHistory returns the user's own thread with the primary admin
func (s *DialogService) UserHistory(ctx context.Context, userID int64, page int) (domain.Page[domain.ThreadMessage], error) {
	admins, err := s.access.AdminIDs(ctx)
	if err != nil {
		return domain.Page[domain.ThreadMessage]{}, err
	}
	if len(admins) == 0 {
		return domain.Page[domain.ThreadMessage]{}, domain.ErrNoAdmins
	}
	return s.thread(ctx, userID, admins[0], page)
}

func (s *DialogService) thread(ctx context.Context, userA, userB int64, page int) (domain.Page[domain.ThreadMessage], error) {
	total, err := s.messageRepo.CountThread(ctx, userA, userB)
	if err != nil {
		return domain.Page[domain.ThreadMessage]{}, err
	}

	page, totalPages, offset := domain.ClampPage(total, page, domain.PageSize)
	items, err := s.messageRepo.ListThread(ctx, userA, userB, domain.PageSize, offset)
	if err != nil {
		return domain.Page[domain.ThreadMessage]{}, err
	}

	return domain.Page[domain.ThreadMessage]{
		Items:      items,
		Number:     page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// SetBlocked blocks or unblocks userID
func (s *DialogService) SetBlocked(ctx context.Context, adminID, userID int64, blocked bool) error {
	if err := s.access.Authorize(ctx, adminID); err != nil {
		return err
	}
	if err := s.userRepo.SetBlocked(ctx, userID, blocked); err != nil {
		return err
	}

	s.logger.Info("User block status changed",
		zap.Int64("admin_id", adminID),
		zap.Int64("user_id", userID),
		zap.Bool("blocked", blocked),
	)
	return nil
}

// EraseThread deletes the admin's whole thread with userID
func (s *DialogService) EraseThread(ctx context.Context, adminID, userID int64) (int64, error) {
	if err := s.access.Authorize(ctx, adminID); err != nil {
		return 0, err
	}

	n, err := s.messageRepo.EraseThread(ctx, adminID, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Thread erased",
		zap.Int64("admin_id", adminID),
		zap.Int64("user_id", userID),
		zap.Int64("messages", n),
	)
	return n, nil
}
