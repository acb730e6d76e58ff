package handler

import (
	"credit-api/internal/api/handler/dto"
	"credit-api/internal/config"
	"credit-api/internal/domain/customer"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

type AuthHandler struct {
	cfg       config.AuthConfig
	customers customer.CustomerService
	now       func() time.Time
	logger    *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, customers customer.CustomerService, l *slog.Logger) *AuthHandler {
	if customers == nil {
		panic("customer service cannot be nil")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &AuthHandler{
		cfg:       cfg,
		customers: customers,
		now:       time.Now,
		logger:    l.With("component", "AuthHandler"),
	}
}

// GenerateBearerToken handles POST /auth/token
// @Summary Issue a JWT bearer token
// @Description Exchanges a customer's email and password for an HS256 bearer token whose subject is the customer ID.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Customer credentials"
// @Success 200 {object} dto.TokenResponse "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode token request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	cust, err := h.customers.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Authentication failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	issuedAt := h.now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(cust.ID, 10),
		"email": cust.Email,
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(h.cfg.TokenTTL).Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign token", slog.Any("error", err))
		respondError(w, fmt.Errorf("signing token: %w", err))
		return
	}

	h.logger.InfoContext(r.Context(), "Issued bearer token", slog.Int64("customerID", cust.ID))
	respondJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.cfg.TokenTTL.Seconds()),
	})
}
