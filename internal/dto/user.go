package dto

import (
	"time"

	md "github.com/JMURv/auth-service/internal/models"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email       string `json:"email"                 validate:"required,email,max=255"`
	Password    string `json:"password"              validate:"required,min=8,max=72,strongpwd"`
	FirstName   string `json:"firstName"             validate:"required,max=100"`
	LastName    string `json:"lastName"              validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,e164"`
}

// UserResponse is the sanitized view of a user; it never carries the password hash.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	PhoneNumber *string    `json:"phoneNumber,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func NewUserResponse(u *md.User) *UserResponse {
	if u == nil {
		return nil
	}

	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
