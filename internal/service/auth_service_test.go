package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/facility-ops-api/internal/auth"
	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

func TestAuthServiceLogin(t *testing.T) {
	db := setupServiceDB(t)
	tenant := seedTenant(t, db, "acme")
	users := repository.NewUserRepository(db)
	tenants := repository.NewTenantRepository(db)
	tokens := auth.NewTokenManager("secret", time.Hour)

	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{TenantID: tenant.ID, Name: "Mia", Email: "mia@acme.test", PasswordHash: hash, Role: models.RoleManager, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&user).Error)

	svc := NewAuthService(users, tenants, tokens, newTestValidator(), bcrypt.MinCost, zerolog.Nop())
	ctx := context.Background()

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "mia@acme.test", Password: "wrong-password"})
	require.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@acme.test", Password: "password123"})
	require.True(t, errors.Is(err, ErrInvalidCredentials))

	result, err := svc.Login(ctx, dto.LoginRequest{Email: "MIA@acme.test", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.NotNil(t, result.User.LastLoginAt)

	claims, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.Subject)
	require.Equal(t, models.RoleManager, claims.Role)
	require.Equal(t, tenant.ID, claims.TenantID)

	me, err := svc.Me(ctx, Actor{ID: user.ID})
	require.NoError(t, err)
	require.Equal(t, "mia@acme.test", me.Email)

	tenant.Status = models.TenantStatusSuspended
	require.NoError(t, db.Save(&tenant).Error)
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "mia@acme.test", Password: "password123"})
	require.True(t, errors.Is(err, ErrTenantSuspended))

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("status", models.UserStatusInactive).Error)
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "mia@acme.test", Password: "password123"})
	require.True(t, errors.Is(err, ErrUserInactive))
}

func TestAuthServiceEnsureSuperadmin(t *testing.T) {
	db := setupServiceDB(t)
	users := repository.NewUserRepository(db)
	svc := NewAuthService(users, repository.NewTenantRepository(db), auth.NewTokenManager("secret", time.Hour), newTestValidator(), bcrypt.MinCost, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.EnsureSuperadmin(ctx, "", "ignored"))
	total, err := users.Count(ctx, repository.UserFilter{})
	require.NoError(t, err)
	require.Zero(t, total)

	require.NoError(t, svc.EnsureSuperadmin(ctx, " Root@Platform.test ", "password123"))
	require.NoError(t, svc.EnsureSuperadmin(ctx, "root@platform.test", "password123"))

	total, err = users.Count(ctx, repository.UserFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	result, err := svc.Login(ctx, dto.LoginRequest{Email: "root@platform.test", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperadmin, result.User.Role)
	require.Empty(t, result.User.TenantID)
}
