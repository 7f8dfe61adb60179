package models

import (
	"time"

	"github.com/google/uuid"
)

type RevokeReason string

const (
	RevokeTokenReuse   RevokeReason = "token_reuse"
	RevokeExpired      RevokeReason = "expired"
	RevokeLogout       RevokeReason = "logout"
	RevokeManual       RevokeReason = "manual"
	RevokeUserInactive RevokeReason = "user_inactive"
)

// RefreshToken is one generation of a refresh credential. Only the digest of
// the plaintext is ever stored.
type RefreshToken struct {
	ID                  uuid.UUID     `db:"id"                    json:"id"`
	FamilyID            uuid.UUID     `db:"family_id"             json:"familyId"`
	UserID              uuid.UUID     `db:"user_id"               json:"userId"`
	TokenDigest         string        `db:"token_digest"          json:"-"`
	PreviousTokenDigest *string       `db:"previous_token_digest" json:"-"`
	Generation          int           `db:"generation"            json:"generation"`
	ExpiresAt           time.Time     `db:"expires_at"            json:"expiresAt"`
	UsedAt              *time.Time    `db:"used_at"               json:"usedAt,omitempty"`
	RevokedAt           *time.Time    `db:"revoked_at"            json:"revokedAt,omitempty"`
	RevokeReason        *RevokeReason `db:"revoke_reason"         json:"revokeReason,omitempty"`
	IPAddress           string        `db:"ip_address"            json:"ipAddress"`
	UserAgent           string        `db:"user_agent"            json:"userAgent"`
	DeviceID            string        `db:"device_id"             json:"deviceId"`
	CreatedAt           time.Time     `db:"created_at"            json:"createdAt"`
}

func (t *RefreshToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsLiveAt reports whether the token can still be exchanged for the next generation.
func (t *RefreshToken) IsLiveAt(now time.Time) bool {
	return !t.IsUsed() && !t.IsRevoked() && !t.IsExpiredAt(now)
}

type FailureReason string

const (
	FailureUserNotFound    FailureReason = "user_not_found"
	FailureInvalidPassword FailureReason = "invalid_password"
)

type FailedLoginAttempt struct {
	ID          int64         `db:"id"           json:"id"`
	Email       string        `db:"email"        json:"email"`
	IPAddress   string        `db:"ip_address"   json:"ipAddress"`
	UserAgent   string        `db:"user_agent"   json:"userAgent"`
	Reason      FailureReason `db:"reason"       json:"reason"`
	AttemptedAt time.Time     `db:"attempted_at" json:"attemptedAt"`
}

type OrganizationClaim struct {
	ID   uuid.UUID `db:"id"   json:"id"`
	Role string    `db:"role" json:"role"`
}

type ProjectClaim struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organizationId"`
	Role           string    `db:"role"            json:"role"`
}

// AuthzClaims are the membership claims embedded into access tokens.
type AuthzClaims struct {
	Organizations []OrganizationClaim `json:"organizations"`
	Projects      []ProjectClaim      `json:"projects"`
}
