package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/auth"
	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

// AuthService authenticates staff and bootstraps the platform owner.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Me(ctx context.Context, actor Actor) (dto.UserResponse, error)
	EnsureSuperadmin(ctx context.Context, email, password string) error
}

type authService struct {
	users      repository.UserRepository
	tenants    repository.TenantRepository
	tokens     *auth.TokenManager
	validator  *validator.Validate
	bcryptCost int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, tenants repository.TenantRepository, tokens *auth.TokenManager, validate *validator.Validate, bcryptCost int, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		tenants:    tenants,
		tokens:     tokens,
		validator:  validate,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		s.logger.Warn().Str("user_id", user.ID).Msg("password mismatch")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return dto.LoginResponse{}, ErrUserInactive
	}
	if user.TenantID != "" {
		tenant, err := s.tenants.GetByID(ctx, user.TenantID)
		if err != nil {
			return dto.LoginResponse{}, notFound(err, ErrTenantNotFound)
		}
		if tenant.Status == models.TenantStatusSuspended {
			return dto.LoginResponse{}, ErrTenantSuspended
		}
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Role, user.TenantID)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	user.LastLoginAt = timePtr(s.now().UTC())
	if err := s.users.Save(ctx, &user); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return dto.LoginResponse{Token: token, ExpiresAt: expiresAt, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, notFound(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}

// EnsureSuperadmin creates the platform owner once. Blank credentials disable it.
func (s *authService) EnsureSuperadmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	user := models.User{
		Name:         "Superadmin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperadmin,
		Status:       models.UserStatusActive,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("superadmin bootstrapped")
	return nil
}
