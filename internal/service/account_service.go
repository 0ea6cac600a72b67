package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/course-service/internal/access"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/repository"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// AccountService hosts admin-only account administration. Role changes go
// through here and nowhere else; no course or enrollment action ever touches
// a role as a side effect.
type AccountService struct {
	users repository.UserRepository
}

// NewAccountService constructs the service.
func NewAccountService(users repository.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// ChangeRole reassigns an account's role, admin-only.
func (s *AccountService) ChangeRole(ctx context.Context, actor *domain.User, userID string, newRole domain.Role) (*domain.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if !newRole.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(newRole)})
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = newRole
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Suspend blocks an account from every operation until reactivated.
func (s *AccountService) Suspend(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = domain.AccountStatusSuspended
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Reactivate restores a suspended account to ACTIVE.
func (s *AccountService) Reactivate(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = domain.AccountStatusActive
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AccountService) requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if actor.Status == domain.AccountStatusSuspended {
		return apperrors.NewAccessDenied(access.ReasonSuspended)
	}
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewAccessDenied(access.ReasonDenied)
	}
	return nil
}

func (s *AccountService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
