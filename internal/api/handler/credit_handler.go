package handler

import (
	"credit-api/internal/api/handler/dto"
	"credit-api/internal/domain/credit"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type CreditHandler struct {
	service credit.CreditService
	logger  *slog.Logger
}

func NewCreditHandler(s credit.CreditService, l *slog.Logger) *CreditHandler {
	if s == nil {
		panic("credit service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CreditHandler{
		service: s,
		logger:  l.With("component", "CreditHandler"),
	}
}

func getCustomerIDFromQuery(r *http.Request) (int64, error) {
	return parseID(r.URL.Query().Get("customerId"), "customerId")
}

// CreateCredit handles POST /credits
// @Summary Request a credit
// @Description Registers a credit request for an existing customer. The first installment must be a future date no later than three months from today and the number of installments must be between 1 and 48.
// @Tags Credits
// @Accept json
// @Produce json
// @Param request body dto.CreateCreditRequest true "Credit request"
// @Success 201 {object} dto.CreditResponse "Credit successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or first installment date"
// @Failure 403 {object} dto.ErrorResponse "Token belongs to another customer"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits [post]
// @Security BearerAuth
func (h *CreditHandler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create credit request")

	var req dto.CreateCreditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if req.CustomerID != 0 {
		if err := authorizeCustomer(r, req.CustomerID); err != nil {
			h.logger.WarnContext(r.Context(), "Token subject does not match credit owner", slog.Int64("customerID", req.CustomerID))
			respondError(w, err)
			return
		}
	}

	created, err := h.service.CreateCredit(r.Context(), req.ToInput())
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to create credit", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Credit created successfully",
		slog.String("creditCode", created.CreditCode.String()),
		slog.Int64("customerID", created.CustomerID),
	)
	respondJSON(w, http.StatusCreated, dto.NewCreditResponse(created))
}

// ListCredits handles GET /credits?customerId={customerID}
// @Summary List a customer's credits
// @Description Lists every credit owned by the customer, oldest first. An unknown customer yields an empty list.
// @Tags Credits
// @Produce json
// @Param customerId query int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.CreditResponse "Credits of the customer"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid customerId"
// @Failure 403 {object} dto.ErrorResponse "Token belongs to another customer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits [get]
// @Security BearerAuth
func (h *CreditHandler) ListCredits(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromQuery(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid customerId query parameter", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if err := authorizeCustomer(r, customerID); err != nil {
		h.logger.WarnContext(r.Context(), "Token subject does not match customer", slog.Int64("customerID", customerID))
		respondError(w, err)
		return
	}

	credits, err := h.service.ListCreditsByCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list credits", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCreditListResponse(credits))
}

// GetCredit handles GET /credits/{creditCode}?customerId={customerID}
// @Summary Retrieve a credit by its code
// @Description Returns the credit identified by the code, provided it belongs to the given customer.
// @Tags Credits
// @Produce json
// @Param creditCode path string true "Credit code" Format(uuid)
// @Param customerId query int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CreditResponse "Credit details"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid customerId"
// @Failure 403 {object} dto.ErrorResponse "Credit or token belongs to another customer"
// @Failure 404 {object} dto.ErrorResponse "Credit code not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /credits/{creditCode} [get]
// @Security BearerAuth
func (h *CreditHandler) GetCredit(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromQuery(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid customerId query parameter", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if err := authorizeCustomer(r, customerID); err != nil {
		h.logger.WarnContext(r.Context(), "Token subject does not match customer", slog.Int64("customerID", customerID))
		respondError(w, err)
		return
	}
	creditCode := chi.URLParam(r, "creditCode")

	found, err := h.service.FindByCreditCode(r.Context(), customerID, creditCode)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to find credit", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCreditResponse(found))
}
