package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/course-service/internal/access"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/config"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// AuthService coordinates signup, login and email verification.
type AuthService struct {
	users           repository.UserRepository
	verifications   auth.VerificationStore
	tokenMgr        *auth.TokenManager
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	bcryptCost      int
	verificationTTL time.Duration
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	VerificationStore auth.VerificationStore
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:           deps.UserRepo,
		verifications:   deps.VerificationStore,
		tokenMgr:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher:      deps.Dispatcher,
		logger:          deps.Logger,
		bcryptCost:      cfg.Auth.BcryptCost,
		verificationTTL: cfg.Auth.VerificationTTL(),
	}
}

// TokenManager exposes the configured manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates a student account in PENDING status and issues a
// verification token. Failure to store or deliver the verification token is
// reported and swallowed; signup never rolls back because of it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		Status:       domain.AccountStatusPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	verificationToken := uuid.NewString()
	if s.verifications != nil {
		if err := s.verifications.Put(ctx, verificationToken, user.ID, s.verificationTTL); err != nil {
			s.logger.Warn("failed to store verification token", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	s.publish(ctx, user, events.Event{
		Type:       events.EventUserRegistered,
		ResourceID: user.ID,
		Payload: events.UserRegisteredPayload{
			Email:             user.Email,
			Role:              user.Role,
			VerificationToken: verificationToken,
		},
	})
	return user, nil
}

// CreateUser lets an admin provision instructor or admin accounts directly in
// ACTIVE status, skipping email verification.
func (s *AuthService) CreateUser(ctx context.Context, actor *domain.User, name, email, password string, role domain.Role) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	if actor.Status == domain.AccountStatusSuspended {
		return nil, apperrors.NewAccessDenied(access.ReasonSuspended)
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewAccessDenied(access.ReasonDenied)
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.AccountStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates a user. Suspended accounts cannot obtain tokens;
// pending accounts may log in but remain blocked from gated operations until
// verified.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}
	if user.Status == domain.AccountStatusSuspended {
		return nil, "", time.Time{}, apperrors.NewAccessDenied(access.ReasonSuspended)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// VerifyEmail redeems a verification token and activates the account.
// Verifying an already active account is a no-op.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	if s.verifications == nil {
		return nil, apperrors.NewInternalError(errors.New("verification store not configured"))
	}
	userID, err := s.verifications.Redeem(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return nil, apperrors.NewValidationError("invalid or expired verification token", nil)
		}
		return nil, apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user.Status == domain.AccountStatusPending {
		user.Status = domain.AccountStatusActive
		if err := s.users.Update(ctx, user); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}
