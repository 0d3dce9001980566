package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

func TestTenantServiceCreateAndSuspend(t *testing.T) {
	db := setupServiceDB(t)
	activity := &recordingActivity{}
	svc := NewTenantService(repository.NewTenantRepository(db), newTestValidator(), activity, zerolog.Nop())
	ctx := context.Background()
	root := Actor{ID: "root", Role: models.RoleSuperadmin}

	created, err := svc.Create(ctx, root, dto.TenantCreateRequest{Name: "Acme Facilities", Slug: "  Acme Facilities!! ", Plan: "pro"})
	require.NoError(t, err)
	require.Equal(t, "acme-facilities", created.Slug)
	require.Equal(t, models.TenantStatusActive, created.Status)

	_, err = svc.Create(ctx, root, dto.TenantCreateRequest{Name: "Acme Copy", Slug: "acme-facilities"})
	require.True(t, errors.Is(err, ErrTenantSlugTaken))

	_, err = svc.Create(ctx, root, dto.TenantCreateRequest{Name: "Symbols", Slug: "!!!"})
	require.True(t, errors.Is(err, ErrTenantSlugInvalid))

	suspended, err := svc.Update(ctx, root, created.ID, dto.TenantUpdateRequest{Status: stringPtr(models.TenantStatusSuspended)})
	require.NoError(t, err)
	require.Equal(t, models.TenantStatusSuspended, suspended.Status)

	list, err := svc.List(ctx, dto.TenantListRequest{Status: models.TenantStatusSuspended})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	_, err = svc.Get(ctx, "missing")
	require.True(t, errors.Is(err, ErrTenantNotFound))

	require.Equal(t, []string{"tenant.created", "tenant.updated"}, activity.actions())
}
