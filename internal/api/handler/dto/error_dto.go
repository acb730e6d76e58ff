package dto

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Exception string    `json:"exception"`
	Details   []any     `json:"details,omitempty"`
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type TokenRequest struct {
	Email    string `json:"email" example:"ana@example.com"`
	Password string `json:"password" example:"s3cret"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}
