package handler

import (
	"credit-api/internal/api/handler/dto"
	"credit-api/internal/api/middleware"
	"credit-api/internal/domain/credit"
	"credit-api/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	msgBadRequest     = "Bad request"
	msgInternalError  = "Internal server error"
	msgNotFound       = "Resource not found."
	msgUnauthorized   = "Unauthorized"
	maxRequestBodyLen = 1 << 20
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: no request body", apperrors.ErrInvalidArgument)
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyLen))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", apperrors.ErrInvalidArgument, err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError maps err to a status and error body. Unrecognised errors
// become a bare 500.
func respondError(w http.ResponseWriter, err error) {
	status, resp := errorResponse(err)
	respondJSON(w, status, resp)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	resp := dto.ErrorResponse{Timestamp: time.Now()}

	var validationErrs *apperrors.ValidationErrors
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &validationErrs):
		resp.Message, resp.Exception = msgBadRequest, apperrors.CodeValidation
		for _, v := range validationErrs.Violations {
			resp.Details = append(resp.Details, dto.FieldViolation{Field: v.Field, Message: v.Message})
		}
		return http.StatusBadRequest, resp

	case errors.As(err, &appErr) && appErr.Code != apperrors.CodeDatabase && appErr.Code != apperrors.CodeInternal:
		resp.Message, resp.Exception = appErr.Message, appErr.Code
		for _, d := range appErr.Details {
			resp.Details = append(resp.Details, d)
		}
		return statusFor(appErr), resp

	case errors.Is(err, apperrors.ErrInvalidArgument):
		resp.Message, resp.Exception = msgBadRequest, apperrors.CodeInvalidArgument
		resp.Details = []any{err.Error()}
		return http.StatusBadRequest, resp

	case errors.Is(err, apperrors.ErrNotFound):
		resp.Message, resp.Exception = msgNotFound, apperrors.CodeUserNotFound
		return http.StatusNotFound, resp

	case errors.Is(err, apperrors.ErrUnauthorized):
		resp.Message, resp.Exception = msgUnauthorized, apperrors.CodeUnauthorized
		return http.StatusUnauthorized, resp
	}

	slog.Default().Error("Unhandled internal error", "error", err)
	resp.Message, resp.Exception = msgInternalError, apperrors.CodeInternal
	return http.StatusInternalServerError, resp
}

func statusFor(appErr *apperrors.AppError) int {
	switch {
	case errors.Is(appErr, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(appErr, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(appErr, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(appErr, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(appErr, apperrors.ErrInvalidArgument), errors.Is(appErr, apperrors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", apperrors.ErrInvalidArgument, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", apperrors.ErrInvalidArgument, name)
	}
	return id, nil
}

// authorizeCustomer rejects requests whose bearer token was issued to a
// different customer. Requests that passed no auth carry no subject.
func authorizeCustomer(r *http.Request, customerID int64) error {
	subject, ok := middleware.SubjectFromContext(r.Context())
	if !ok || subject == strconv.FormatInt(customerID, 10) {
		return nil
	}
	return credit.ErrForbidden
}
