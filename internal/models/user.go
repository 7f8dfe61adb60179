package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `db:"id"            json:"id"`
	Email       string     `db:"email"         json:"email"`
	Password    string     `db:"password"      json:"-"`
	FirstName   string     `db:"first_name"    json:"firstName"`
	LastName    string     `db:"last_name"     json:"lastName"`
	PhoneNumber *string    `db:"phone_number"  json:"phoneNumber,omitempty"`
	Role        string     `db:"role"          json:"role"`
	IsActive    bool       `db:"is_active"     json:"isActive"`
	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at"    json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at"    json:"updatedAt"`
}
