package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

func newInvoiceFixture(t *testing.T) (*invoiceService, *recordingActivity, models.Client, Actor) {
	t.Helper()
	db := setupServiceDB(t)
	clients := repository.NewClientRepository(db)
	client := models.Client{TenantID: "acme", Name: "Harbour Mall", Status: models.ClientStatusActive}
	require.NoError(t, clients.Create(context.Background(), &client))

	activity := &recordingActivity{}
	svc := NewInvoiceService(repository.NewInvoiceRepository(db), clients, newTestValidator(), activity, time.UTC, zerolog.Nop()).(*invoiceService)
	clock := &testClock{current: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	return svc, activity, client, Actor{ID: "a1", Role: models.RoleAdmin, TenantID: "acme"}
}

func TestInvoiceServiceNumberingAndTotals(t *testing.T) {
	svc, activity, client, admin := newInvoiceFixture(t)
	ctx := context.Background()

	req := dto.InvoiceCreateRequest{
		ClientID: client.ID,
		DueDate:  "2026-04-13",
		TaxRate:  11,
		Items: []dto.InvoiceItemPayload{
			{Description: "Cleaning", Quantity: 3, UnitPrice: 150.25},
			{Description: "Supplies", Quantity: 1.5, UnitPrice: 20},
		},
	}

	first, err := svc.Create(ctx, admin, req)
	require.NoError(t, err)
	require.Equal(t, "INV-202603-0001", first.Number)
	require.Equal(t, "2026-03-14", first.IssueDate)
	require.Equal(t, models.InvoiceStatusDraft, first.Status)
	require.Equal(t, 450.75, first.Items[0].Amount)
	require.Equal(t, 30.0, first.Items[1].Amount)
	require.Equal(t, 480.75, first.Subtotal)
	require.Equal(t, 52.88, first.TaxAmount)
	require.Equal(t, 533.63, first.Total)

	second, err := svc.Create(ctx, admin, req)
	require.NoError(t, err)
	require.Equal(t, "INV-202603-0002", second.Number)

	req.IssueDate = "2026-04-01"
	req.DueDate = "2026-04-30"
	april, err := svc.Create(ctx, admin, req)
	require.NoError(t, err)
	require.Equal(t, "INV-202604-0001", april.Number)

	req.DueDate = "2026-03-01"
	_, err = svc.Create(ctx, admin, req)
	require.True(t, errors.Is(err, ErrInvoiceDates))

	req.DueDate = "2026-04-30"
	req.ClientID = "missing"
	_, err = svc.Create(ctx, admin, req)
	require.True(t, errors.Is(err, ErrClientNotFound))

	require.Equal(t, []string{"invoice.created", "invoice.created", "invoice.created"}, activity.actions())
}

func TestInvoiceServiceNumberingAfterDraftDeletes(t *testing.T) {
	svc, _, client, admin := newInvoiceFixture(t)
	ctx := context.Background()

	req := dto.InvoiceCreateRequest{
		ClientID: client.ID,
		DueDate:  "2026-04-13",
		Items:    []dto.InvoiceItemPayload{{Description: "Cleaning", Quantity: 1, UnitPrice: 100}},
	}

	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		invoice, err := svc.Create(ctx, admin, req)
		require.NoError(t, err)
		ids = append(ids, invoice.ID)
	}
	for _, id := range ids[:3] {
		require.NoError(t, svc.Delete(ctx, admin, id))
	}

	next, err := svc.Create(ctx, admin, req)
	require.NoError(t, err)
	require.Equal(t, "INV-202603-0007", next.Number)
}

func TestNextInvoiceSequence(t *testing.T) {
	require.Equal(t, 1, nextInvoiceSequence("", "INV-202603-"))
	require.Equal(t, 13, nextInvoiceSequence("INV-202603-0012", "INV-202603-"))
	require.Equal(t, 1, nextInvoiceSequence("INV-202603-draft", "INV-202603-"))
}

func TestInvoiceServiceLifecycle(t *testing.T) {
	svc, _, client, admin := newInvoiceFixture(t)
	ctx := context.Background()

	invoice, err := svc.Create(ctx, admin, dto.InvoiceCreateRequest{
		ClientID: client.ID,
		DueDate:  "2026-04-13",
		Items:    []dto.InvoiceItemPayload{{Description: "Security", Quantity: 10, UnitPrice: 40}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, admin, invoice.ID, dto.InvoiceUpdateRequest{TaxRate: floatPtr(10), Notes: stringPtr("net 30")})
	require.NoError(t, err)
	require.Equal(t, 400.0, updated.Subtotal)
	require.Equal(t, 440.0, updated.Total)

	_, err = svc.UpdateStatus(ctx, admin, invoice.ID, dto.InvoiceStatusRequest{Status: models.InvoiceStatusPaid})
	require.True(t, errors.Is(err, ErrInvoiceTransition))

	sent, err := svc.UpdateStatus(ctx, admin, invoice.ID, dto.InvoiceStatusRequest{Status: models.InvoiceStatusSent})
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusSent, sent.Status)

	_, err = svc.Update(ctx, admin, invoice.ID, dto.InvoiceUpdateRequest{Notes: stringPtr("late edit")})
	require.True(t, errors.Is(err, ErrInvoiceNotDraft))
	require.True(t, errors.Is(svc.Delete(ctx, admin, invoice.ID), ErrInvoiceNotDraft))

	overdue, err := svc.UpdateStatus(ctx, admin, invoice.ID, dto.InvoiceStatusRequest{Status: models.InvoiceStatusOverdue})
	require.NoError(t, err)
	require.Nil(t, overdue.PaidAt)

	paid, err := svc.UpdateStatus(ctx, admin, invoice.ID, dto.InvoiceStatusRequest{Status: models.InvoiceStatusPaid})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.UpdateStatus(ctx, admin, invoice.ID, dto.InvoiceStatusRequest{Status: models.InvoiceStatusCancelled})
	require.True(t, errors.Is(err, ErrInvoiceTransition))

	draft, err := svc.Create(ctx, admin, dto.InvoiceCreateRequest{
		ClientID: client.ID,
		DueDate:  "2026-04-13",
		Items:    []dto.InvoiceItemPayload{{Description: "Audit", Quantity: 1, UnitPrice: 99.99}},
	})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, admin)
	require.NoError(t, err)
	require.Len(t, summary.ByStatus, 5)
	totals := map[string]dto.StatusTotal{}
	for _, row := range summary.ByStatus {
		totals[row.Status] = row
	}
	require.Equal(t, int64(1), totals[models.InvoiceStatusPaid].Count)
	require.Equal(t, 440.0, totals[models.InvoiceStatusPaid].Amount)
	require.Equal(t, 99.99, totals[models.InvoiceStatusDraft].Amount)
	require.Equal(t, 539.99, summary.Total)

	require.NoError(t, svc.Delete(ctx, admin, draft.ID))
	_, err = svc.Get(ctx, admin, draft.ID)
	require.True(t, errors.Is(err, ErrInvoiceNotFound))
}

func TestInvoiceServiceExport(t *testing.T) {
	svc, _, client, admin := newInvoiceFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, dto.InvoiceCreateRequest{
		ClientID: client.ID,
		DueDate:  "2026-04-13",
		Items: []dto.InvoiceItemPayload{
			{Description: "Cleaning", Quantity: 2, UnitPrice: 100},
			{Description: "Windows", Quantity: 1, UnitPrice: 50},
		},
	})
	require.NoError(t, err)

	payload, err := svc.Export(ctx, admin, dto.InvoiceListRequest{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer book.Close()

	invoices, err := book.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	require.Equal(t, "INV-202603-0001", invoices[1][0])

	items, err := book.GetRows("Items")
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestExpenseServiceReview(t *testing.T) {
	db := setupServiceDB(t)
	activity := &recordingActivity{}
	svc := NewExpenseService(repository.NewExpenseRepository(db), newTestValidator(), activity, time.UTC, zerolog.Nop())
	ctx := context.Background()

	supervisor := Actor{ID: "s1", Role: models.RoleSupervisor, TenantID: "acme"}
	manager := Actor{ID: "m1", Role: models.RoleManager, TenantID: "acme"}

	expense, err := svc.Create(ctx, supervisor, dto.ExpenseCreateRequest{Category: "supplies", Amount: 120.456, Vendor: "CleanCo", IncurredOn: "2026-03-10"})
	require.NoError(t, err)
	require.Equal(t, models.ExpenseStatusPending, expense.Status)
	require.Equal(t, 120.46, expense.Amount)
	require.Equal(t, "s1", expense.SubmittedBy)

	_, err = svc.Create(ctx, supervisor, dto.ExpenseCreateRequest{Category: "bribes", Amount: 10})
	require.Error(t, err)

	edited, err := svc.Update(ctx, supervisor, expense.ID, dto.ExpenseUpdateRequest{Amount: floatPtr(130)})
	require.NoError(t, err)
	require.Equal(t, 130.0, edited.Amount)

	_, err = svc.Approve(ctx, supervisor, expense.ID)
	require.True(t, errors.Is(err, ErrForbidden))

	approved, err := svc.Approve(ctx, manager, expense.ID)
	require.NoError(t, err)
	require.Equal(t, models.ExpenseStatusApproved, approved.Status)
	require.Equal(t, "m1", *approved.ReviewedBy)

	_, err = svc.Reject(ctx, manager, expense.ID)
	require.True(t, errors.Is(err, ErrExpenseNotPending))
	_, err = svc.Update(ctx, supervisor, expense.ID, dto.ExpenseUpdateRequest{Vendor: stringPtr("Other")})
	require.True(t, errors.Is(err, ErrExpenseNotPending))
	require.True(t, errors.Is(svc.Delete(ctx, manager, expense.ID), ErrExpenseNotPending))

	pending, err := svc.Create(ctx, supervisor, dto.ExpenseCreateRequest{Category: "travel", Amount: 45})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, manager)
	require.NoError(t, err)
	require.Equal(t, 175.0, summary.Total)
	require.Equal(t, models.ExpenseStatusPending, summary.ByStatus[0].Status)
	require.Equal(t, int64(1), summary.ByStatus[0].Count)

	require.NoError(t, svc.Delete(ctx, supervisor, pending.ID))
	_, err = svc.Approve(ctx, manager, pending.ID)
	require.True(t, errors.Is(err, ErrExpenseNotFound))

	require.Contains(t, activity.actions(), "expense.approved")
}

func floatPtr(value float64) *float64 {
	return &value
}
