package config

import "time"

type ctxKey string

const (
	UidKey      ctxKey = "uid"
	IpKey       ctxKey = "ip"
	UaKey       ctxKey = "ua"
	DeviceIDKey ctxKey = "device_id"
)

const (
	DefaultRole      = "user"
	TokenType        = "Bearer"
	ClaimsCacheTime  = time.Minute * 5
	MaxRotationTries = 2
)

const (
	RefreshCookieName = "refresh"
	DeviceIDHeader    = "X-Device-ID"
)
