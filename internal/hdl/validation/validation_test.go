package validation

import (
	"testing"

	"github.com/JMURv/auth-service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Register(t *testing.T) {
	valid := func() *dto.RegisterRequest {
		return &dto.RegisterRequest{
			Email:     "alice@example.com",
			Password:  "Sup3r$ecret",
			FirstName: "Alice",
			LastName:  "Liddell",
		}
	}

	tests := []struct {
		name     string
		mutate   func(r *dto.RegisterRequest)
		contains string
	}{
		{
			name:   "Valid",
			mutate: func(r *dto.RegisterRequest) {},
		},
		{
			name:   "Valid with phone",
			mutate: func(r *dto.RegisterRequest) { r.PhoneNumber = "+15551234567" },
		},
		{
			name:     "Missing email",
			mutate:   func(r *dto.RegisterRequest) { r.Email = "" },
			contains: "email failed on required rule",
		},
		{
			name:     "Bad email",
			mutate:   func(r *dto.RegisterRequest) { r.Email = "not-an-email" },
			contains: "email must be a valid email address",
		},
		{
			name:     "Short password",
			mutate:   func(r *dto.RegisterRequest) { r.Password = "Ab1$" },
			contains: "password failed on min=8 rule",
		},
		{
			name:     "Weak password",
			mutate:   func(r *dto.RegisterRequest) { r.Password = "alllowercase1" },
			contains: "password must contain",
		},
		{
			name:     "Bad phone",
			mutate:   func(r *dto.RegisterRequest) { r.PhoneNumber = "555-1234" },
			contains: "phoneNumber must be in E.164 format",
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				req := valid()
				tt.mutate(req)

				err := Struct(req)
				if tt.contains == "" {
					assert.NoError(t, err)
					return
				}

				var verrs Errors
				require.ErrorAs(t, err, &verrs)
				assert.Contains(t, verrs.Error(), tt.contains)
			},
		)
	}
}

func TestStruct_Login(t *testing.T) {
	err := Struct(&dto.LoginRequest{})

	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	assert.NoError(t, Struct(&dto.LoginRequest{Email: "a@b.co", Password: "x"}))
}
