package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/observability"
	"github.com/noah-isme/facility-ops-api/internal/repository"
	"github.com/noah-isme/facility-ops-api/pkg/report"
)

const invoiceNumberAttempts = 3

var invoiceTransitions = map[string][]string{
	models.InvoiceStatusDraft:   {models.InvoiceStatusSent, models.InvoiceStatusCancelled},
	models.InvoiceStatusSent:    {models.InvoiceStatusPaid, models.InvoiceStatusOverdue, models.InvoiceStatusCancelled},
	models.InvoiceStatusOverdue: {models.InvoiceStatusPaid, models.InvoiceStatusCancelled},
}

var invoiceStatuses = []string{
	models.InvoiceStatusDraft,
	models.InvoiceStatusSent,
	models.InvoiceStatusPaid,
	models.InvoiceStatusOverdue,
	models.InvoiceStatusCancelled,
}

// InvoiceService manages client invoices.
type InvoiceService interface {
	List(ctx context.Context, actor Actor, req dto.InvoiceListRequest) (dto.ListResponse[dto.InvoiceResponse], error)
	Get(ctx context.Context, actor Actor, id string) (dto.InvoiceResponse, error)
	Create(ctx context.Context, actor Actor, req dto.InvoiceCreateRequest) (dto.InvoiceResponse, error)
	Update(ctx context.Context, actor Actor, id string, req dto.InvoiceUpdateRequest) (dto.InvoiceResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req dto.InvoiceStatusRequest) (dto.InvoiceResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Summary(ctx context.Context, actor Actor) (dto.BillingSummaryResponse, error)
	Export(ctx context.Context, actor Actor, req dto.InvoiceListRequest) ([]byte, error)
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	clients   repository.ClientRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	tracer    trace.Tracer
	location  *time.Location
	now       func() time.Time
}

// NewInvoiceService constructs the invoice service.
func NewInvoiceService(repo repository.InvoiceRepository, clients repository.ClientRepository, validate *validator.Validate, activity ActivityRecorder, location *time.Location, logger zerolog.Logger) InvoiceService {
	if location == nil {
		location = time.UTC
	}
	return &invoiceService{
		repo:      repo,
		clients:   clients,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "invoice_service").Logger(),
		tracer:    observability.Tracer("billing"),
		location:  location,
		now:       time.Now,
	}
}

func (s *invoiceService) List(ctx context.Context, actor Actor, req dto.InvoiceListRequest) (dto.ListResponse[dto.InvoiceResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.InvoiceResponse]{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ListResponse[dto.InvoiceResponse]{}, err
	}
	if err := validateRange(req.From, req.To); err != nil {
		return dto.ListResponse[dto.InvoiceResponse]{}, err
	}

	pageSize := clampPageSize(req.PageSize)
	invoices, total, err := s.repo.List(ctx, s.filter(actor, req, repository.Page{Page: req.Page, PageSize: pageSize}))
	if err != nil {
		return dto.ListResponse[dto.InvoiceResponse]{}, err
	}

	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		items = append(items, dto.NewInvoiceResponse(invoice))
	}
	return dto.ListResponse[dto.InvoiceResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *invoiceService) filter(actor Actor, req dto.InvoiceListRequest, page repository.Page) repository.InvoiceFilter {
	return repository.InvoiceFilter{
		Page:     page,
		TenantID: actor.TenantID,
		ClientID: strings.TrimSpace(req.ClientID),
		Status:   strings.TrimSpace(req.Status),
		From:     req.From,
		To:       req.To,
	}
}

func (s *invoiceService) Get(ctx context.Context, actor Actor, id string) (dto.InvoiceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.InvoiceResponse{}, err
	}
	invoice, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.InvoiceResponse{}, notFound(err, ErrInvoiceNotFound)
	}
	return dto.NewInvoiceResponse(invoice), nil
}

func (s *invoiceService) Create(ctx context.Context, actor Actor, req dto.InvoiceCreateRequest) (dto.InvoiceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.InvoiceResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.InvoiceResponse{}, err
	}

	clientID := strings.TrimSpace(req.ClientID)
	if _, err := s.clients.GetByID(ctx, actor.TenantID, clientID); err != nil {
		return dto.InvoiceResponse{}, notFound(err, ErrClientNotFound)
	}

	issueDate := strings.TrimSpace(req.IssueDate)
	if issueDate == "" {
		issueDate = s.now().In(s.location).Format(models.DateLayout)
	}
	if req.DueDate < issueDate {
		return dto.InvoiceResponse{}, ErrInvoiceDates
	}
	issued, err := parseDate(issueDate)
	if err != nil {
		return dto.InvoiceResponse{}, ErrInvoiceDates
	}

	invoice := models.Invoice{
		TenantID:  actor.TenantID,
		ClientID:  clientID,
		IssueDate: issueDate,
		DueDate:   req.DueDate,
		TaxRate:   req.TaxRate,
		Status:    models.InvoiceStatusDraft,
		Notes:     strings.TrimSpace(req.Notes),
	}
	applyInvoiceItems(&invoice, req.Items)

	prefix := fmt.Sprintf("INV-%s-", issued.Format("200601"))
	for attempt := 0; ; attempt++ {
		if attempt == invoiceNumberAttempts {
			return dto.InvoiceResponse{}, ErrInvoiceNumberExhausted
		}
		last, err := s.repo.LastNumber(ctx, actor.TenantID, prefix)
		if err != nil {
			return dto.InvoiceResponse{}, err
		}
		invoice.ID = ""
		invoice.Number = fmt.Sprintf("%s%04d", prefix, nextInvoiceSequence(last, prefix))
		err = s.repo.Create(ctx, &invoice)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.InvoiceResponse{}, err
		}
		s.logger.Warn().Str("number", invoice.Number).Msg("invoice number taken, retrying")
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "invoice.created",
		EntityType: "invoice",
		EntityID:   invoice.ID,
		Metadata:   map[string]interface{}{"number": invoice.Number, "total": invoice.Total},
	})
	return dto.NewInvoiceResponse(invoice), nil
}

func (s *invoiceService) Update(ctx context.Context, actor Actor, id string, req dto.InvoiceUpdateRequest) (dto.InvoiceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.InvoiceResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.InvoiceResponse{}, err
	}
	invoice, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.InvoiceResponse{}, notFound(err, ErrInvoiceNotFound)
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return dto.InvoiceResponse{}, ErrInvoiceNotDraft
	}

	if req.ClientID != nil {
		clientID := strings.TrimSpace(*req.ClientID)
		if _, err := s.clients.GetByID(ctx, actor.TenantID, clientID); err != nil {
			return dto.InvoiceResponse{}, notFound(err, ErrClientNotFound)
		}
		invoice.ClientID = clientID
	}
	if req.IssueDate != nil {
		invoice.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if invoice.DueDate < invoice.IssueDate {
		return dto.InvoiceResponse{}, ErrInvoiceDates
	}
	if req.TaxRate != nil {
		invoice.TaxRate = *req.TaxRate
	}
	assignTrimmed(&invoice.Notes, req.Notes)
	if req.Items != nil {
		applyInvoiceItems(&invoice, req.Items)
	} else {
		recomputeInvoice(&invoice)
	}

	if err := s.repo.Save(ctx, &invoice); err != nil {
		return dto.InvoiceResponse{}, err
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "invoice.updated",
		EntityType: "invoice",
		EntityID:   invoice.ID,
		Metadata:   map[string]interface{}{"number": invoice.Number, "total": invoice.Total},
	})
	return dto.NewInvoiceResponse(invoice), nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, actor Actor, id string, req dto.InvoiceStatusRequest) (dto.InvoiceResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.InvoiceResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.InvoiceResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "invoice.status", trace.WithAttributes(
		attribute.String("invoice.id", id),
		attribute.String("invoice.target_status", req.Status),
	))
	defer span.End()

	invoice, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return dto.InvoiceResponse{}, notFound(err, ErrInvoiceNotFound)
	}
	if !invoiceTransitionAllowed(invoice.Status, req.Status) {
		span.SetStatus(codes.Error, "transition rejected")
		return dto.InvoiceResponse{}, fmt.Errorf("%w: %s to %s", ErrInvoiceTransition, invoice.Status, req.Status)
	}

	previous := invoice.Status
	invoice.Status = req.Status
	if req.Status == models.InvoiceStatusPaid {
		invoice.PaidAt = timePtr(s.now().UTC())
	}
	if err := s.repo.Save(ctx, &invoice); err != nil {
		span.RecordError(err)
		return dto.InvoiceResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "invoice.status_changed",
		EntityType: "invoice",
		EntityID:   invoice.ID,
		Metadata:   map[string]interface{}{"from": previous, "to": invoice.Status},
	})
	return dto.NewInvoiceResponse(invoice), nil
}

func (s *invoiceService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := actor.requireTenant(); err != nil {
		return err
	}
	invoice, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return notFound(err, ErrInvoiceNotFound)
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return ErrInvoiceNotDraft
	}
	if err := s.repo.Delete(ctx, actor.TenantID, id); err != nil {
		return notFound(err, ErrInvoiceNotFound)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "invoice.deleted",
		EntityType: "invoice",
		EntityID:   id,
		Metadata:   map[string]interface{}{"number": invoice.Number},
	})
	return nil
}

func (s *invoiceService) Summary(ctx context.Context, actor Actor) (dto.BillingSummaryResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.BillingSummaryResponse{}, err
	}
	rows, err := s.repo.Summary(ctx, actor.TenantID)
	if err != nil {
		return dto.BillingSummaryResponse{}, err
	}
	return summarizeAmounts(invoiceStatuses, rows), nil
}

func (s *invoiceService) Export(ctx context.Context, actor Actor, req dto.InvoiceListRequest) ([]byte, error) {
	if err := actor.requireTenant(); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if err := validateRange(req.From, req.To); err != nil {
		return nil, err
	}

	invoices, _, err := s.repo.List(ctx, s.filter(actor, req, repository.Page{}))
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(invoices))
	lines := make([][]interface{}, 0, len(invoices))
	for _, invoice := range invoices {
		paidAt := ""
		if invoice.PaidAt != nil {
			paidAt = invoice.PaidAt.In(s.location).Format(time.RFC3339)
		}
		rows = append(rows, []interface{}{
			invoice.Number,
			invoice.ClientID,
			invoice.IssueDate,
			invoice.DueDate,
			invoice.Status,
			invoice.Subtotal,
			invoice.TaxRate,
			invoice.TaxAmount,
			invoice.Total,
			paidAt,
		})
		for _, item := range invoice.Items {
			lines = append(lines, []interface{}{invoice.Number, item.Description, item.Quantity, item.UnitPrice, item.Amount})
		}
	}

	return report.Workbook(
		report.Sheet{
			Name:    "Invoices",
			Headers: []string{"Number", "Client", "Issue Date", "Due Date", "Status", "Subtotal", "Tax Rate", "Tax", "Total", "Paid At"},
			Rows:    rows,
		},
		report.Sheet{
			Name:    "Items",
			Headers: []string{"Invoice", "Description", "Quantity", "Unit Price", "Amount"},
			Rows:    lines,
		},
	)
}

func invoiceTransitionAllowed(from, to string) bool {
	for _, candidate := range invoiceTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func applyInvoiceItems(invoice *models.Invoice, payload []dto.InvoiceItemPayload) {
	items := make([]models.InvoiceItem, 0, len(payload))
	for _, item := range payload {
		items = append(items, models.InvoiceItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	invoice.Items = items
	recomputeInvoice(invoice)
}

// recomputeInvoice derives line amounts and totals from quantities and prices.
func recomputeInvoice(invoice *models.Invoice) {
	subtotal := 0.0
	for i := range invoice.Items {
		invoice.Items[i].Amount = round2(invoice.Items[i].Quantity * invoice.Items[i].UnitPrice)
		subtotal += invoice.Items[i].Amount
	}
	invoice.Subtotal = round2(subtotal)
	invoice.TaxAmount = round2(invoice.Subtotal * invoice.TaxRate / 100)
	invoice.Total = round2(invoice.Subtotal + invoice.TaxAmount)
}

func summarizeAmounts(statuses []string, rows []repository.AmountByStatus) dto.BillingSummaryResponse {
	byStatus := make(map[string]repository.AmountByStatus, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}
	response := dto.BillingSummaryResponse{ByStatus: make([]dto.StatusTotal, 0, len(statuses))}
	for _, status := range statuses {
		row := byStatus[status]
		response.ByStatus = append(response.ByStatus, dto.StatusTotal{Status: status, Count: row.Count, Amount: round2(row.Amount)})
		response.Total += row.Amount
	}
	response.Total = round2(response.Total)
	return response
}

// nextInvoiceSequence follows the highest number issued under the prefix.
func nextInvoiceSequence(last, prefix string) int {
	seq, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil || seq < 0 {
		return 1
	}
	return seq + 1
}
