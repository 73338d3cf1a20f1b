package dto

import "time"

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserInfo represents the user information stored in the context
type UserInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
