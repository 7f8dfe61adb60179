package dto

type DeviceRequest struct {
	IP       string `json:"ip"`
	UA       string `json:"ua"`
	DeviceID string `json:"deviceId"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Token    string `json:"token"`
}

type RefreshRequest struct {
	Refresh string `json:"refreshToken"`
}

// TokenResponse is returned by login and refresh. RefreshToken is empty on a
// grace-period replay, in which case the client keeps its current refresh token.
type TokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    int64         `json:"expiresIn"`
	User         *UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RecaptchaResponse struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}
