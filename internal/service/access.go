package service

import (
	"context"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"

	"go.uber.org/zap"
)

// AccessService handles registration and the admin authority model.
// Authority has two tiers: the configured bootstrap set and admins
// promoted in the store. IsAdmin is the only place they are combined.
type AccessService struct {
	userRepo repository.UserRepository
	admins   domain.AdminSet
	logger   *zap.Logger
}

// NewAccessService creates a new access service
func NewAccessService(userRepo repository.UserRepository, admins domain.AdminSet, logger *zap.Logger) *AccessService {
	return &AccessService{
		userRepo: userRepo,
		admins:   admins,
		logger:   logger,
	}
}

// Register records a contact. The first call creates the row; later calls
// only re-assert admin status for bootstrap ids.
func (s *AccessService) Register(ctx context.Context, u domain.User) error {
	return s.userRepo.UpsertUser(ctx, u, s.admins.Contains(u.UserID))
}

// IsAdmin reports whether userID is a bootstrap admin or a stored admin
func (s *AccessService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if s.admins.Contains(userID) {
		return true, nil
	}
	return s.userRepo.IsAdmin(ctx, userID)
}

// IsBootstrap reports whether userID is in the configured admin set
func (s *AccessService) IsBootstrap(userID int64) bool {
	return s.admins.Contains(userID)
}

// Authorize returns domain.ErrForbidden unless requester is an admin
func (s *AccessService) Authorize(ctx context.Context, requester int64) error {
	ok, err := s.IsAdmin(ctx, requester)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("Unauthorized admin operation", zap.Int64("user_id", requester))
		return domain.ErrForbidden
	}
	return nil
}

// IsBlocked checks if user is blocked
func (s *AccessService) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	return s.userRepo.IsBlocked(ctx, userID)
}

// GetUser returns the stored profile or nil
func (s *AccessService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetUser(ctx, userID)
}

// SetAdmin changes the stored flag. Demoting a bootstrap admin is a silent no-op.
func (s *AccessService) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	if !admin && s.admins.Contains(userID) {
		return nil
	}
	return s.userRepo.SetAdmin(ctx, userID, admin)
}

// AdminIDs returns bootstrap ids followed by stored admins not already listed.
// The first id is the primary admin that user messages are addressed to.
func (s *AccessService) AdminIDs(ctx context.Context) ([]int64, error) {
	stored, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}

	ids := s.admins.IDs()
	for _, id := range stored {
		if !s.admins.Contains(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
