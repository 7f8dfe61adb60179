package utils

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/dto"
	"github.com/JMURv/auth-service/internal/hdl"
	"github.com/JMURv/auth-service/internal/hdl/validation"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

func SuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Debug("failed to encode response", zap.Error(err))
	}
}

func StatusResponse(w http.ResponseWriter, statusCode int) {
	w.WriteHeader(statusCode)
}

func ErrResponse(w http.ResponseWriter, statusCode int, err error) {
	res := &ErrorsResponse{}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		res.Errors = verrs
	} else {
		res.Errors = []string{err.Error()}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err = json.NewEncoder(w).Encode(res); err != nil {
		zap.L().Debug("failed to encode error response", zap.Error(err))
	}
}

// ParseAndValidate decodes the JSON body into req and runs its validation
// rules. On failure it writes a 400 and returns false.
func ParseAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		zap.L().Debug(hdl.ErrDecodeRequest.Error(), zap.Error(err))
		ErrResponse(w, http.StatusBadRequest, hdl.ErrDecodeRequest)
		return false
	}

	if err := validation.Struct(req); err != nil {
		ErrResponse(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func ParseDeviceByRequest(ctx context.Context) (dto.DeviceRequest, bool) {
	ip, ok := ctx.Value(config.IpKey).(string)
	if !ok {
		return dto.DeviceRequest{}, false
	}

	ua, _ := ctx.Value(config.UaKey).(string)
	deviceID, _ := ctx.Value(config.DeviceIDKey).(string)
	return dto.DeviceRequest{
		IP:       ip,
		UA:       ua,
		DeviceID: deviceID,
	}, true
}

func SetRefreshCookie(w http.ResponseWriter, refresh string, ttl time.Duration) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     config.RefreshCookieName,
			Value:    refresh,
			Expires:  time.Now().Add(ttl),
			HttpOnly: true,
			Secure:   true,
			Path:     "/auth",
			SameSite: http.SameSiteStrictMode,
		},
	)
}

func ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     config.RefreshCookieName,
			Value:    "",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			Path:     "/auth",
			SameSite: http.SameSiteStrictMode,
		},
	)
}
