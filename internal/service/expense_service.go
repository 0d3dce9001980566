package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
	"github.com/noah-isme/facility-ops-api/internal/repository"
)

var expenseStatuses = []string{
	models.ExpenseStatusPending,
	models.ExpenseStatusApproved,
	models.ExpenseStatusRejected,
}

// ExpenseService manages tenant expenses.
type ExpenseService interface {
	List(ctx context.Context, actor Actor, req dto.ExpenseListRequest) (dto.ListResponse[dto.ExpenseResponse], error)
	Create(ctx context.Context, actor Actor, req dto.ExpenseCreateRequest) (dto.ExpenseResponse, error)
	Update(ctx context.Context, actor Actor, id string, req dto.ExpenseUpdateRequest) (dto.ExpenseResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Approve(ctx context.Context, actor Actor, id string) (dto.ExpenseResponse, error)
	Reject(ctx context.Context, actor Actor, id string) (dto.ExpenseResponse, error)
	Summary(ctx context.Context, actor Actor) (dto.BillingSummaryResponse, error)
}

type expenseService struct {
	repo      repository.ExpenseRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
	location  *time.Location
	now       func() time.Time
}

// NewExpenseService constructs the expense service.
func NewExpenseService(repo repository.ExpenseRepository, validate *validator.Validate, activity ActivityRecorder, location *time.Location, logger zerolog.Logger) ExpenseService {
	if location == nil {
		location = time.UTC
	}
	return &expenseService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "expense_service").Logger(),
		location:  location,
		now:       time.Now,
	}
}

func (s *expenseService) List(ctx context.Context, actor Actor, req dto.ExpenseListRequest) (dto.ListResponse[dto.ExpenseResponse], error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ListResponse[dto.ExpenseResponse]{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ListResponse[dto.ExpenseResponse]{}, err
	}
	if err := validateRange(req.From, req.To); err != nil {
		return dto.ListResponse[dto.ExpenseResponse]{}, err
	}

	pageSize := clampPageSize(req.PageSize)
	expenses, total, err := s.repo.List(ctx, repository.ExpenseFilter{
		Page:     repository.Page{Page: req.Page, PageSize: pageSize},
		TenantID: actor.TenantID,
		Category: strings.TrimSpace(req.Category),
		Status:   strings.TrimSpace(req.Status),
		From:     req.From,
		To:       req.To,
	})
	if err != nil {
		return dto.ListResponse[dto.ExpenseResponse]{}, err
	}

	items := make([]dto.ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		items = append(items, dto.NewExpenseResponse(expense))
	}
	return dto.ListResponse[dto.ExpenseResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(maxInt(req.Page, 1), pageSize, total),
	}, nil
}

func (s *expenseService) Create(ctx context.Context, actor Actor, req dto.ExpenseCreateRequest) (dto.ExpenseResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.ExpenseResponse{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.ExpenseResponse{}, err
	}

	incurredOn := strings.TrimSpace(req.IncurredOn)
	if incurredOn == "" {
		incurredOn = s.now().In(s.location).Format(models.DateLayout)
	}
	expense := models.Expense{
		TenantID:    actor.TenantID,
		Category:    req.Category,
		Amount:      round2(req.Amount),
		Description: strings.TrimSpace(req.Description),
		Vendor:      strings.TrimSpace(req.Vendor),
		IncurredOn:  incurredOn,
		Status:      models.ExpenseStatusPending,
		SubmittedBy: actor.ID,
		ReceiptURL:  strings.TrimSpace(req.ReceiptURL),
	}
	if err := s.repo.Create(ctx, &expense); err != nil {
		return dto.ExpenseResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "expense.created",
		EntityType: "expense",
		EntityID:   expense.ID,
		Metadata:   map[string]interface{}{"category": expense.Category, "amount": expense.Amount},
	})
	return dto.NewExpenseResponse(expense), nil
}

func (s *expenseService) pending(ctx context.Context, actor Actor, id string) (models.Expense, error) {
	if err := actor.requireTenant(); err != nil {
		return models.Expense{}, err
	}
	expense, err := s.repo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return models.Expense{}, notFound(err, ErrExpenseNotFound)
	}
	if expense.Status != models.ExpenseStatusPending {
		return models.Expense{}, ErrExpenseNotPending
	}
	return expense, nil
}

func (s *expenseService) Update(ctx context.Context, actor Actor, id string, req dto.ExpenseUpdateRequest) (dto.ExpenseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ExpenseResponse{}, err
	}
	expense, err := s.pending(ctx, actor, id)
	if err != nil {
		return dto.ExpenseResponse{}, err
	}

	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Amount != nil {
		expense.Amount = round2(*req.Amount)
	}
	assignTrimmed(&expense.Description, req.Description)
	assignTrimmed(&expense.Vendor, req.Vendor)
	assignTrimmed(&expense.IncurredOn, req.IncurredOn)
	assignTrimmed(&expense.ReceiptURL, req.ReceiptURL)

	if err := s.repo.Save(ctx, &expense); err != nil {
		return dto.ExpenseResponse{}, err
	}
	return dto.NewExpenseResponse(expense), nil
}

func (s *expenseService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.pending(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.TenantID, id); err != nil {
		return notFound(err, ErrExpenseNotFound)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "expense.deleted",
		EntityType: "expense",
		EntityID:   id,
	})
	return nil
}

func (s *expenseService) Approve(ctx context.Context, actor Actor, id string) (dto.ExpenseResponse, error) {
	return s.review(ctx, actor, id, models.ExpenseStatusApproved)
}

func (s *expenseService) Reject(ctx context.Context, actor Actor, id string) (dto.ExpenseResponse, error) {
	return s.review(ctx, actor, id, models.ExpenseStatusRejected)
}

func (s *expenseService) review(ctx context.Context, actor Actor, id, status string) (dto.ExpenseResponse, error) {
	if !actor.AtLeast(models.RoleManager) {
		return dto.ExpenseResponse{}, ErrForbidden
	}
	expense, err := s.pending(ctx, actor, id)
	if err != nil {
		return dto.ExpenseResponse{}, err
	}

	expense.Status = status
	expense.ReviewedBy = stringPtr(actor.ID)
	if err := s.repo.Save(ctx, &expense); err != nil {
		return dto.ExpenseResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "expense." + status,
		EntityType: "expense",
		EntityID:   expense.ID,
		Metadata:   map[string]interface{}{"amount": expense.Amount},
	})
	return dto.NewExpenseResponse(expense), nil
}

func (s *expenseService) Summary(ctx context.Context, actor Actor) (dto.BillingSummaryResponse, error) {
	if err := actor.requireTenant(); err != nil {
		return dto.BillingSummaryResponse{}, err
	}
	rows, err := s.repo.Summary(ctx, actor.TenantID)
	if err != nil {
		return dto.BillingSummaryResponse{}, err
	}
	return summarizeAmounts(expenseStatuses, rows), nil
}
