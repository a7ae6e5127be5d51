package dto

import "time"

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// RegisterRequest is the POST /auth/register payload.
type RegisterRequest struct {
	UserID      string `json:"userId"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidateResponse confirms a live session.
type ValidateResponse struct {
	UserID string `json:"userId"`
}
