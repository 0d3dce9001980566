package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

func TestManagerAttendanceServiceDayWithPhotos(t *testing.T) {
	db := setupServiceDB(t)
	tenant := seedTenant(t, db, "acme")
	manager := actorFor(seedUser(t, db, tenant.ID, models.RoleManager, "mgr@acme.test", nil))

	storage := newMemoryStorage()
	clock := &testClock{current: time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)}
	svc := NewManagerAttendanceService(
		repository.NewManagerAttendanceRepository(db),
		storage,
		newTestValidator(),
		ManagerAttendanceOptions{HalfDayHours: 4, MaxPhotos: 2, MaxUploadMB: 1},
		zerolog.Nop(),
	).(*managerAttendanceService)
	svc.now = clock.now
	ctx := context.Background()

	_, err := svc.AddPhotos(ctx, manager, multipartFiles(t, testFile{name: "a.png", content: pngPayload}))
	require.True(t, errors.Is(err, ErrAttendanceNotFound))

	record, err := svc.CheckIn(ctx, manager, dto.ManagerCheckInRequest{Site: "Harbour Plaza", Remarks: "opening"})
	require.NoError(t, err)
	require.Equal(t, "Harbour Plaza", record.Site)

	_, err = svc.CheckIn(ctx, manager, dto.ManagerCheckInRequest{Site: "Harbour Plaza"})
	require.True(t, errors.Is(err, ErrAlreadyCheckedIn))

	_, err = svc.AddPhotos(ctx, manager, nil)
	require.True(t, errors.Is(err, ErrPhotoRequired))

	record, err = svc.AddPhotos(ctx, manager, multipartFiles(t, testFile{name: "gate.png", content: pngPayload}))
	require.NoError(t, err)
	require.Len(t, record.Photos, 1)

	_, err = svc.AddPhotos(ctx, manager, multipartFiles(t,
		testFile{name: "b.png", content: pngPayload},
		testFile{name: "c.png", content: pngPayload},
	))
	require.True(t, errors.Is(err, ErrPhotoLimit))
	require.Len(t, storage.objects, 1)

	clock.advance(2 * time.Hour)
	_, err = svc.StartBreak(ctx, manager)
	require.NoError(t, err)
	clock.advance(time.Hour)
	_, err = svc.EndBreak(ctx, manager)
	require.NoError(t, err)
	clock.advance(5 * time.Hour)

	record, err = svc.CheckOut(ctx, manager, dto.ManagerCheckOutRequest{Remarks: "closed"})
	require.NoError(t, err)
	require.Equal(t, 7.0, record.TotalHours)
	require.Equal(t, models.AttendanceStatusPresent, record.Status)

	today, err := svc.Today(ctx, manager)
	require.NoError(t, err)
	require.Equal(t, models.ClockStateCheckedOut, today.State)
}

func TestManagerAttendanceServiceListScope(t *testing.T) {
	db := setupServiceDB(t)
	tenant := seedTenant(t, db, "acme")
	admin := actorFor(seedUser(t, db, tenant.ID, models.RoleAdmin, "admin@acme.test", nil))
	first := actorFor(seedUser(t, db, tenant.ID, models.RoleManager, "m1@acme.test", nil))
	second := actorFor(seedUser(t, db, tenant.ID, models.RoleManager, "m2@acme.test", nil))

	svc := NewManagerAttendanceService(repository.NewManagerAttendanceRepository(db), nil, newTestValidator(), ManagerAttendanceOptions{}, zerolog.Nop())
	ctx := context.Background()
	for _, manager := range []Actor{first, second} {
		_, err := svc.CheckIn(ctx, manager, dto.ManagerCheckInRequest{Site: "Depot"})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, admin, dto.ManagerAttendanceListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)

	own, err := svc.List(ctx, first, dto.ManagerAttendanceListRequest{ManagerID: second.ID})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	require.Equal(t, first.ID, own.Items[0].ManagerID)

	_, err = svc.AddPhotos(ctx, first, multipartFiles(t, testFile{name: "a.png", content: pngPayload}))
	require.True(t, errors.Is(err, ErrPhotoStorageUnavailable))
}
