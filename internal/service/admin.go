package service

import (
	"context"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository"

	"go.uber.org/zap"
)

// Placeholder names for users promoted before they ever contacted the bot
const unknownName = "Unknown"

// AdminService manages the admin roster
type AdminService struct {
	access   *AccessService
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(access *AccessService, userRepo repository.UserRepository, logger *zap.Logger) *AdminService {
	return &AdminService{
		access:   access,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Promote makes target an admin. created is true when no row existed and a
// placeholder user had to be inserted.
func (s *AdminService) Promote(ctx context.Context, requester, target int64) (created bool, err error) {
	if err := s.access.Authorize(ctx, requester); err != nil {
		return false, err
	}

	user, err := s.userRepo.GetUser(ctx, target)
	if err != nil {
		return false, err
	}

	if user == nil {
		placeholder := domain.User{
			UserID:   target,
			Username: unknownName,
			FullName: unknownName,
			IsAdmin:  true,
		}
		if err := s.access.Register(ctx, placeholder); err != nil {
			return false, err
		}
		created = true
	}

	// The upsert leaves an existing row's flag alone, so a row created
	// since GetUser still has to be flipped
	if err := s.access.SetAdmin(ctx, target, true); err != nil {
		return false, err
	}

	s.logger.Info("Admin promoted",
		zap.Int64("requester_id", requester),
		zap.Int64("user_id", target),
		zap.Bool("created", created),
	)
	return created, nil
}

// Demote removes target from the stored admins.
// Bootstrap admins, self-demotion and removing the last admin are rejected.
func (s *AdminService) Demote(ctx context.Context, requester, target int64) error {
	if err := s.access.Authorize(ctx, requester); err != nil {
		return err
	}

	isAdmin, err := s.access.IsAdmin(ctx, target)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.ErrNotAdmin
	}

	if s.access.IsBootstrap(target) {
		return domain.ErrBootstrapAdmin
	}

	if target == requester {
		return domain.ErrSelfDemotion
	}

	ids, err := s.access.AdminIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) <= 1 {
		return domain.ErrLastAdmin
	}

	if err := s.access.SetAdmin(ctx, target, false); err != nil {
		return err
	}

	s.logger.Info("Admin demoted",
		zap.Int64("requester_id", requester),
		zap.Int64("user_id", target),
	)
	return nil
}

// ListAdmins returns profiles of stored admins, skipping ids without a profile
func (s *AdminService) ListAdmins(ctx context.Context, requester int64) ([]domain.User, error) {
	if err := s.access.Authorize(ctx, requester); err != nil {
		return nil, err
	}

	ids, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}

	admins := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepo.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		admins = append(admins, *user)
	}
	return admins, nil
}
