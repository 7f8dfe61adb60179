package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/JMURv/auth-service/internal/auth/captcha"
	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/ctrl"
	"github.com/JMURv/auth-service/internal/dto"
	"github.com/JMURv/auth-service/internal/hdl"
	"github.com/JMURv/auth-service/internal/hdl/http/utils"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const logoutMessage = "Successfully logged out from all devices"

// register godoc
//
//	@Summary		Register a new user
//	@Description	Create an account with the default role
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.RegisterRequest	true	"Registration payload"
//	@Success		201		{object}	dto.UserResponse
//	@Failure		400		{object}	utils.ErrorsResponse	"validation failed"
//	@Failure		409		{object}	utils.ErrorsResponse	"user already exists"
//	@Failure		500		{object}	utils.ErrorsResponse	"internal error"
//	@Router			/auth/register [post]
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register.hdl"

	req := &dto.RegisterRequest{}
	if ok := utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	res, err := h.ctrl.Register(r.Context(), req)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, res)
}

// login godoc
//
//	@Summary		Authenticate using email & password
//	@Description	Verify reCAPTCHA when enabled, then issue an access token and a refresh token
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			X-Real-IP	header		string				false	"Client real IP address"
//	@Param			User-Agent	header		string				false	"Client User-Agent"
//	@Param			X-Device-ID	header		string				false	"Client device id"
//	@Param			body		body		dto.LoginRequest	true	"Login credentials"
//	@Success		200			{object}	dto.TokenResponse
//	@Failure		400			{object}	utils.ErrorsResponse
//	@Failure		401			{object}	utils.ErrorsResponse	"invalid credentials or inactive account"
//	@Failure		429			{object}	utils.ErrorsResponse	"too many failed attempts"
//	@Failure		500			{object}	utils.ErrorsResponse	"internal error"
//	@Router			/auth/login [post]
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login.hdl"

	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		d = dto.DeviceRequest{IP: r.RemoteAddr, UA: r.UserAgent()}
	}

	req := &dto.LoginRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	valid, err := h.au.VerifyRecaptcha(r.Context(), req.Token, captcha.PassAuth)
	if err != nil {
		zap.L().Error("failed to verify captcha", zap.String("op", op), zap.Error(err))
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	if !valid {
		utils.ErrResponse(w, http.StatusUnauthorized, captcha.ErrValidationFailed)
		return
	}

	res, err := h.ctrl.Login(r.Context(), &d, req)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SetRefreshCookie(w, res.RefreshToken, h.au.RefreshTTL())
	utils.SuccessResponse(w, http.StatusOK, res)
}

// refresh godoc
//
//	@Summary		Rotate a refresh token
//	@Description	Exchange a refresh token (body or cookie) for a new token pair. Within the grace period a replayed token yields an access token only.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			X-Real-IP	header		string				false	"Client real IP address"
//	@Param			User-Agent	header		string				false	"Client User-Agent"
//	@Param			body		body		dto.RefreshRequest	false	"Refresh token"
//	@Success		200			{object}	dto.TokenResponse
//	@Failure		400			{object}	utils.ErrorsResponse	"refresh token is required"
//	@Failure		401			{object}	utils.ErrorsResponse	"invalid or expired refresh token"
//	@Failure		403			{object}	utils.ErrorsResponse	"token reuse detected"
//	@Failure		429			{object}	utils.ErrorsResponse	"too many refresh requests"
//	@Failure		500			{object}	utils.ErrorsResponse	"internal error"
//	@Router			/auth/refresh [post]
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	const op = "auth.refresh.hdl"

	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		d = dto.DeviceRequest{IP: r.RemoteAddr, UA: r.UserAgent()}
	}

	req := &dto.RefreshRequest{}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			utils.ErrResponse(w, http.StatusBadRequest, hdl.ErrDecodeRequest)
			return
		}
	}

	if req.Refresh == "" {
		if cookie, err := r.Cookie(config.RefreshCookieName); err == nil {
			req.Refresh = cookie.Value
		}
	}

	if req.Refresh == "" {
		utils.ErrResponse(w, http.StatusBadRequest, ctrl.ErrRefreshTokenRequired)
		return
	}

	res, err := h.ctrl.Refresh(r.Context(), &d, req)
	if err != nil {
		if errors.Is(err, ctrl.ErrTokenReuse) {
			utils.ClearRefreshCookie(w)
		}
		errResponse(w, op, err)
		return
	}

	if res.RefreshToken != "" {
		utils.SetRefreshCookie(w, res.RefreshToken, h.au.RefreshTTL())
	}
	utils.SuccessResponse(w, http.StatusOK, res)
}

// logout godoc
//
//	@Summary		Logout from all devices
//	@Description	Revoke every refresh token of the caller
//	@Tags			Authentication
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer access token"
//	@Success		200				{object}	dto.MessageResponse
//	@Failure		401				{object}	utils.ErrorsResponse	"missing or invalid access token"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/auth/logout [post]
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	const op = "auth.logout.hdl"

	uid, ok := r.Context().Value(config.UidKey).(uuid.UUID)
	if !ok {
		zap.L().Error(
			hdl.ErrFailedToGetUUID.Error(),
			zap.String("op", op),
			zap.Any("uid", r.Context().Value(config.UidKey)),
		)
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return
	}

	if err := h.ctrl.Logout(r.Context(), uid); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.ClearRefreshCookie(w)
	utils.SuccessResponse(w, http.StatusOK, &dto.MessageResponse{Message: logoutMessage})
}

func errResponse(w http.ResponseWriter, op string, err error) {
	var rl *ctrl.RateLimitError
	switch {
	case errors.As(err, &rl):
		w.Header().Set("Retry-After", strconv.Itoa(int(rl.RetryAfter.Seconds())))
		utils.ErrResponse(w, http.StatusTooManyRequests, err)
	case errors.Is(err, ctrl.ErrAlreadyExists):
		utils.ErrResponse(w, http.StatusConflict, err)
	case errors.Is(err, ctrl.ErrRefreshTokenRequired):
		utils.ErrResponse(w, http.StatusBadRequest, err)
	case errors.Is(err, ctrl.ErrInvalidCredentials),
		errors.Is(err, ctrl.ErrInvalidRefreshToken),
		errors.Is(err, ctrl.ErrRefreshTokenExpired),
		errors.Is(err, ctrl.ErrUserInactive):
		utils.ErrResponse(w, http.StatusUnauthorized, err)
	case errors.Is(err, ctrl.ErrTokenReuse):
		utils.ErrResponse(w, http.StatusForbidden, err)
	default:
		zap.L().Error("unexpected error", zap.String("op", op), zap.Error(err))
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
	}
}
