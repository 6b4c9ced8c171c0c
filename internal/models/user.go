package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UserRole mirrors the two roles the mobile app exposes
type UserRole string

const (
	RoleCustomer UserRole = "Customer"
	RoleAdmin    UserRole = "Admin"
)

// User represents an account that can browse and, as Admin, manage schedules
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest represents the request to create a new account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token to exchange for a new token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateRoleRequest switches an account between Customer and Admin
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Validate validates the UpdateRoleRequest
func (req *UpdateRoleRequest) Validate() error {
	role := UserRole(req.Role)
	if role != RoleCustomer && role != RoleAdmin {
		return errors.New("invalid role: must be Customer or Admin")
	}
	return nil
}
