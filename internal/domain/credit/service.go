package credit

import (
	"context"
	"credit-api/internal/domain/customer"
	"credit-api/internal/event"
	"credit-api/internal/infrastructure/monitoring"
	"credit-api/internal/pkg/apperrors"
	"credit-api/internal/pkg/validation"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCreditCodeNotFound = &apperrors.AppError{
		Code:    apperrors.CodeCreditCodeNotFound,
		Message: "Credit code not found.",
		Cause:   apperrors.ErrNotFound,
	}

	ErrForbidden = &apperrors.AppError{
		Code:    apperrors.CodeForbidden,
		Message: "User access forbidden.",
		Cause:   apperrors.ErrForbidden,
	}

	ErrInvalidDate = &apperrors.AppError{
		Code:    apperrors.CodeInvalidDate,
		Message: "The date is greater than 3 months from now.",
		Cause:   apperrors.ErrInvalidArgument,
	}
)

type CreateCreditInput struct {
	CreditValue          *decimal.Decimal `json:"creditValue" validate:"required,gt=0"`
	DayFirstInstallment  string           `json:"dayFirstInstallment" validate:"required,datetime=2006-01-02,future"`
	NumberOfInstallments int              `json:"numberOfInstallments" validate:"min=1,max=48"`
	CustomerID           int64            `json:"customerId" validate:"required"`
}

type CreditService interface {
	CreateCredit(ctx context.Context, in CreateCreditInput) (*Credit, error)
	ListCreditsByCustomer(ctx context.Context, customerID int64) ([]*Credit, error)
	FindByCreditCode(ctx context.Context, customerID int64, creditCode string) (*Credit, error)
}

var _ CreditService = (*creditService)(nil)

type creditService struct {
	repo      Repository
	customers customer.CustomerService
	validator *validation.Validator
	pub       event.EventPublisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewCreditService(repo Repository, cs customer.CustomerService, eventPublisher event.EventPublisher, logger *slog.Logger) CreditService {
	return newCreditService(repo, cs, eventPublisher, time.Now, logger)
}

func newCreditService(repo Repository, cs customer.CustomerService, eventPublisher event.EventPublisher, now func() time.Time, logger *slog.Logger) *creditService {
	if repo == nil || cs == nil {
		panic("credit repository and customer service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if eventPublisher == nil {
		eventPublisher = event.NopPublisher{}
	}
	v := validation.NewWithClock(now)
	v.RegisterMoneyFields(CreateCreditInput{}, "CreditValue")

	return &creditService{
		repo:      repo,
		customers: cs,
		validator: v,
		pub:       eventPublisher,
		now:       now,
		logger:    logger.With(slog.String("component", "creditService")),
	}
}

func (s *creditService) CreateCredit(ctx context.Context, in CreateCreditInput) (*Credit, error) {
	log := s.logger.With(slog.Int64("customerID", in.CustomerID))
	log.InfoContext(ctx, "Attempting to create credit")

	if err := s.validator.Struct(in); err != nil {
		log.WarnContext(ctx, "Validation failed for new credit", slog.Any("error", err))
		return nil, err
	}

	day, err := validation.ParseDate(in.DayFirstInstallment)
	if err != nil {
		return nil, apperrors.NewValidationError("dayFirstInstallment", "dayFirstInstallment must be a date in YYYY-MM-DD format")
	}

	limit := validation.AddMonths(s.now(), MaxMonthsToFirstInstallment)
	if validation.StartOfDay(day).After(limit) {
		log.WarnContext(ctx, "First installment too far ahead",
			slog.String("dayFirstInstallment", in.DayFirstInstallment),
			slog.String("limit", limit.Format(validation.DateLayout)),
		)
		return nil, ErrInvalidDate
	}

	owner, err := s.customers.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		log.WarnContext(ctx, "Failed to resolve credit owner", slog.Any("error", err))
		return nil, err
	}

	credit := NewCredit(in, validation.StartOfDay(day))

	if err := s.repo.Save(ctx, credit); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.WarnContext(ctx, "Customer removed while the credit was being saved")
			return nil, customer.ErrNotFound
		}
		log.ErrorContext(ctx, "Repository failed to save credit", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save credit: %w", err)
	}
	credit.Customer = owner

	log = log.With(slog.String("creditCode", credit.CreditCode.String()))
	monitoring.RecordCreditCreated()

	createdEvent := event.CreditCreatedEvent{
		Timestamp: time.Now(),
		Payload: event.CreditEventPayload{
			CreditCode:          credit.CreditCode.String(),
			CustomerID:          credit.CustomerID,
			CreditValue:         credit.CreditValue.StringFixed(2),
			DayFirstInstallment: credit.DayFirstInstallment.Format(validation.DateLayout),
			NumberOfInstallment: credit.NumberOfInstallments,
			Status:              string(credit.Status),
			CreatedAt:           credit.CreatedAt,
		},
	}
	if pubErr := s.pub.PublishCreditCreated(ctx, createdEvent); pubErr != nil {
		log.ErrorContext(ctx, "Credit created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	log.InfoContext(ctx, "Successfully created credit")
	return credit, nil
}

func (s *creditService) ListCreditsByCustomer(ctx context.Context, customerID int64) ([]*Credit, error) {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.DebugContext(ctx, "Listing credits for customer")

	credits, err := s.repo.FindAllByCustomerID(ctx, customerID)
	if err != nil {
		log.ErrorContext(ctx, "Repository error listing credits", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list credits for customer %d: %w", customerID, err)
	}
	if credits == nil {
		credits = []*Credit{}
	}
	return credits, nil
}

func (s *creditService) FindByCreditCode(ctx context.Context, customerID int64, creditCode string) (*Credit, error) {
	log := s.logger.With(slog.Int64("customerID", customerID), slog.String("creditCode", creditCode))

	code, err := uuid.Parse(creditCode)
	if err != nil {
		log.WarnContext(ctx, "Malformed credit code")
		return nil, ErrCreditCodeNotFound
	}

	credit, err := s.repo.FindByCreditCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.WarnContext(ctx, "Credit code not found by repository")
			return nil, ErrCreditCodeNotFound
		}
		log.ErrorContext(ctx, "Repository error finding credit", slog.Any("error", err))
		return nil, fmt.Errorf("failed to find credit %s: %w", creditCode, err)
	}

	if !credit.OwnedBy(customerID) {
		log.WarnContext(ctx, "Credit belongs to another customer", slog.Int64("ownerID", credit.CustomerID))
		return nil, ErrForbidden
	}

	return credit, nil
}
