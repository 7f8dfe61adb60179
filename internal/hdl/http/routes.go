package http

import (
	mid "github.com/JMURv/auth-service/internal/hdl/http/middleware"
)

const refreshLimitPrefix = "refresh"

func (h *Handler) RegisterRoutes() {
	h.router.Post("/auth/register", h.register)
	h.router.With(mid.Device(h.proxies)).Post("/auth/login", h.login)
	h.router.With(
		mid.RateLimit(
			h.cache,
			h.proxies,
			refreshLimitPrefix,
			h.conf.Auth.Refresh.RateLimit,
			h.conf.Auth.Refresh.RateWindow,
		),
		mid.Device(h.proxies),
	).Post("/auth/refresh", h.refresh)
	h.router.With(mid.Auth(h.au)).Post("/auth/logout", h.logout)
}
