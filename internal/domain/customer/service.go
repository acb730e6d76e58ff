package customer

import (
	"context"
	"credit-api/internal/event"
	"credit-api/internal/infrastructure/monitoring"
	"credit-api/internal/pkg/apperrors"
	"credit-api/internal/pkg/validation"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	inputValidationPassed = "Input validation passed"
	customerNotFound      = "Customer not found by repository"
)

var ErrInvalidCredentials = &apperrors.AppError{
	Code:    apperrors.CodeUnauthorized,
	Message: "Invalid email or password.",
	Cause:   apperrors.ErrUnauthorized,
}

type CreateCustomerInput struct {
	FirstName string           `json:"firstName" validate:"required,notblank,max=255"`
	LastName  string           `json:"lastName" validate:"required,notblank,max=255"`
	CPF       string           `json:"cpf" validate:"required,cpf"`
	Income    *decimal.Decimal `json:"income" validate:"required,gte=0"`
	Email     string           `json:"email" validate:"required,email,max=255"`
	Password  string           `json:"password" validate:"required,max=72"`
	ZipCode   string           `json:"zipCode" validate:"required,notblank,max=20"`
	Street    string           `json:"street" validate:"required,notblank,max=255"`
}

// UpdateCustomerInput holds a partial update; nil fields are left untouched.
type UpdateCustomerInput struct {
	FirstName *string          `json:"firstName" validate:"omitnil,notblank,max=255"`
	LastName  *string          `json:"lastName" validate:"omitnil,notblank,max=255"`
	Income    *decimal.Decimal `json:"income" validate:"omitnil,gte=0"`
	ZipCode   *string          `json:"zipCode" validate:"omitnil,notblank,max=20"`
	Street    *string          `json:"street" validate:"omitnil,notblank,max=255"`
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, in UpdateCustomerInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	Authenticate(ctx context.Context, email, password string) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo      CustomerRepository
	validator *validation.Validator
	pub       event.EventPublisher
	logger    *slog.Logger
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
		eventPublisher = event.NopPublisher{}
	}

	v := validation.New()
	v.RegisterMoneyFields(CreateCustomerInput{}, "Income")
	v.RegisterMoneyFields(UpdateCustomerInput{}, "Income")

	return &customerService{
		repo:      repo,
		validator: v,
		pub:       eventPublisher,
		logger:    logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID: cust.ID,
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Email:      cust.Email,
		Income:     cust.Income.StringFixed(2),
		ZipCode:    cust.Address.ZipCode,
		Street:     cust.Address.Street,
		CreatedAt:  cust.CreatedAt,
		UpdatedAt:  cust.UpdatedAt,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	if err := s.validator.Struct(in); err != nil {
		s.logger.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		return nil, err
	}
	s.logger.DebugContext(ctx, inputValidationPassed)

	hash, err := HashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		s.logger.WarnContext(ctx, "Password exceeds the bcrypt input limit")
		return nil, apperrors.NewValidationError("password", "password must be at most 72 bytes")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash customer password", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to hash password: %v", apperrors.ErrInternalServer, err)
	}

	customer := NewCustomer(in, hash)

	s.logger.DebugContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, customer); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.WarnContext(ctx, "Customer violates a uniqueness constraint", slog.Any("error", err))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	log := s.logger.With(slog.Int64("customerID", customer.ID))
	monitoring.RecordCustomerCreated()

	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(customer),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		log.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	log.InfoContext(ctx, "Successfully created new customer")
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.DebugContext(ctx, "Attempting to get customer by ID")

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}

		log.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	return customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, in UpdateCustomerInput) (*Customer, error) {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.InfoContext(ctx, "Attempting to update customer")

	if err := s.validator.Struct(in); err != nil {
		log.WarnContext(ctx, "Validation failed for customer update", slog.Any("error", err))
		return nil, err
	}

	customer, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if !customer.ApplyUpdate(in) {
		log.InfoContext(ctx, "No customer change needed, skipping save")
		return customer, nil
	}

	if err := s.repo.Save(ctx, customer); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.WarnContext(ctx, "Customer disappeared before save completed")
			return nil, ErrNotFound
		}
		log.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save customer %d: %w", customerID, err)
	}

	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(customer),
	}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, updatedEvent); pubErr != nil {
		log.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	log.InfoContext(ctx, "Successfully updated customer")
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	log := s.logger.With(slog.Int64("customerID", customerID))
	log.InfoContext(ctx, "Attempting to delete customer")

	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return err
	}

	removedCredits, err := s.repo.Delete(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.WarnContext(ctx, customerNotFound)
			return ErrNotFound
		}
		log.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	deletedEvent := event.CustomerDeletedEvent{
		Timestamp:      time.Now(),
		CustomerID:     customerID,
		RemovedCredits: removedCredits,
	}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		log.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	monitoring.RecordCustomerDeleted()
	log.InfoContext(ctx, "Successfully deleted customer", slog.Int64("removedCredits", removedCredits))
	return nil
}

func (s *customerService) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Authentication failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer by email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to authenticate customer: %w", err)
	}

	if !customer.PasswordMatches(password) {
		s.logger.WarnContext(ctx, "Authentication failed: password mismatch", slog.Int64("customerID", customer.ID))
		return nil, ErrInvalidCredentials
	}

	return customer, nil
}
