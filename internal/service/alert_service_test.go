package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

func TestAlertServiceLifecycleAndAudience(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAlertService(repository.NewAlertRepository(db), nil, "", nil, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	manager := Actor{ID: "m1", Role: models.RoleManager, TenantID: "acme"}
	employee := Actor{ID: "e1", Role: models.RoleEmployee, TenantID: "acme"}

	broad, err := svc.Create(ctx, manager, dto.AlertCreateRequest{Title: "Fire drill", Message: "<b>Assemble</b> at gate 2", Severity: "warning"})
	require.NoError(t, err)
	require.Equal(t, "Assemble at gate 2", broad.Message)
	require.Equal(t, "general", broad.Category)
	require.Equal(t, models.RoleEmployee, broad.Audience)
	require.Equal(t, models.AlertStatusOpen, broad.Status)

	restricted, err := svc.Create(ctx, manager, dto.AlertCreateRequest{Title: "Payroll", Message: "Run payroll", Severity: "info", Category: "billing", Audience: models.RoleManager})
	require.NoError(t, err)

	_, err = svc.Create(ctx, manager, dto.AlertCreateRequest{Title: "Empty", Message: "<script></script>", Severity: "info"})
	require.True(t, errors.Is(err, ErrAlertEmpty))

	seen, err := svc.List(ctx, employee, dto.AlertListRequest{})
	require.NoError(t, err)
	require.Len(t, seen.Items, 1)
	require.Equal(t, broad.ID, seen.Items[0].ID)

	seen, err = svc.List(ctx, manager, dto.AlertListRequest{})
	require.NoError(t, err)
	require.Len(t, seen.Items, 2)

	_, err = svc.Acknowledge(ctx, employee, restricted.ID)
	require.True(t, errors.Is(err, ErrAlertNotFound))

	acked, err := svc.Acknowledge(ctx, employee, broad.ID)
	require.NoError(t, err)
	require.Equal(t, models.AlertStatusAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)

	_, err = svc.Acknowledge(ctx, manager, broad.ID)
	require.True(t, errors.Is(err, ErrAlertTransition))

	resolved, err := svc.Resolve(ctx, manager, broad.ID)
	require.NoError(t, err)
	require.Equal(t, models.AlertStatusResolved, resolved.Status)

	_, err = svc.Resolve(ctx, manager, broad.ID)
	require.True(t, errors.Is(err, ErrAlertTransition))

	_, err = svc.Resolve(ctx, Actor{ID: "x", Role: models.RoleAdmin, TenantID: "globex"}, restricted.ID)
	require.True(t, errors.Is(err, ErrAlertNotFound))
}

func TestAlertServiceSubscribersFilteredByTenantAndRank(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAlertService(repository.NewAlertRepository(db), nil, "", nil, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	employeeFeed, closeEmployee := svc.Subscribe("acme", models.RoleRank(models.RoleEmployee))
	defer closeEmployee()
	managerFeed, closeManager := svc.Subscribe("acme", models.RoleRank(models.RoleManager))
	defer closeManager()
	otherTenant, closeOther := svc.Subscribe("globex", models.RoleRank(models.RoleAdmin))
	defer closeOther()

	admin := Actor{ID: "a1", Role: models.RoleAdmin, TenantID: "acme"}
	_, err := svc.Create(ctx, admin, dto.AlertCreateRequest{Title: "Managers only", Message: "Budget review", Severity: "info", Audience: models.RoleManager})
	require.NoError(t, err)

	select {
	case alert := <-managerFeed:
		require.Equal(t, "Managers only", alert.Title)
	case <-time.After(time.Second):
		t.Fatal("manager did not receive alert")
	}

	select {
	case alert := <-employeeFeed:
		t.Fatalf("employee should not receive %q", alert.Title)
	case alert := <-otherTenant:
		t.Fatalf("other tenant should not receive %q", alert.Title)
	case <-time.After(50 * time.Millisecond):
	}

	closeManager()
	closeManager()
	_, open := <-managerFeed
	require.False(t, open)
}

func TestAlertServiceFansOutAcrossNodesWithoutEcho(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	db := setupServiceDB(t)
	repo := repository.NewAlertRepository(db)
	nodeA := NewAlertService(repo, redis.NewClient(&redis.Options{Addr: mini.Addr()}), "facility", nil, newTestValidator(), zerolog.Nop())
	nodeB := NewAlertService(repo, redis.NewClient(&redis.Options{Addr: mini.Addr()}), "facility", nil, newTestValidator(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	nodeA.Start(ctx)
	nodeB.Start(ctx)

	require.Eventually(t, func() bool {
		return mini.PubSubNumSub("facility:alerts")["facility:alerts"] == 2
	}, 2*time.Second, 10*time.Millisecond)

	localFeed, closeLocal := nodeA.Subscribe("acme", models.RoleRank(models.RoleAdmin))
	defer closeLocal()
	remoteFeed, closeRemote := nodeB.Subscribe("acme", models.RoleRank(models.RoleAdmin))
	defer closeRemote()

	created, err := nodeA.Create(ctx, Actor{ID: "a1", Role: models.RoleAdmin, TenantID: "acme"}, dto.AlertCreateRequest{Title: "Lift outage", Message: "Lift 3 down", Severity: "critical", Category: "maintenance"})
	require.NoError(t, err)

	select {
	case alert := <-remoteFeed:
		require.Equal(t, created.ID, alert.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("remote node did not receive alert")
	}

	select {
	case alert := <-localFeed:
		require.Equal(t, created.ID, alert.ID)
	case <-time.After(time.Second):
		t.Fatal("local subscriber did not receive alert")
	}

	select {
	case alert := <-localFeed:
		t.Fatalf("local subscriber received echo of %s", alert.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAlertServiceIgnoresOwnAndMalformedEvents(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewAlertService(repository.NewAlertRepository(db), nil, "", nil, newTestValidator(), zerolog.Nop()).(*alertService)

	feed, closeFeed := svc.Subscribe("acme", models.RoleRank(models.RoleSuperadmin))
	defer closeFeed()

	own, err := json.Marshal(alertEvent{Source: svc.nodeID, Alert: dto.AlertResponse{ID: "1", TenantID: "acme", Audience: models.RoleEmployee}})
	require.NoError(t, err)
	svc.handleEvent(own)
	svc.handleEvent([]byte("{not json"))

	foreign, err := json.Marshal(alertEvent{Source: "other-node", Alert: dto.AlertResponse{ID: "2", TenantID: "acme", Audience: models.RoleEmployee}})
	require.NoError(t, err)
	svc.handleEvent(foreign)

	select {
	case alert := <-feed:
		require.Equal(t, "2", alert.ID)
	case <-time.After(time.Second):
		t.Fatal("foreign event not delivered")
	}
	require.Len(t, feed, 0)
}
