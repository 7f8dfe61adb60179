package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/JMURv/auth-service/api/rest/v1"
	"github.com/JMURv/auth-service/internal/auth"
	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/ctrl"
	mid "github.com/JMURv/auth-service/internal/hdl/http/middleware"
	"github.com/JMURv/auth-service/internal/hdl/http/utils"
	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	router  *chi.Mux
	srv     *http.Server
	au      auth.Core
	ctrl    ctrl.AppCtrl
	cache   ctrl.CacheService
	conf    config.Config
	proxies mid.Proxies
}

func New(au auth.Core, ctrl ctrl.AppCtrl, cache ctrl.CacheService, conf config.Config) *Handler {
	proxies, err := mid.ParseProxies(conf.Server.TrustedProxies)
	if err != nil {
		zap.L().Fatal("failed to parse trusted proxies", zap.Error(err))
	}

	h := &Handler{
		router:  chi.NewRouter(),
		au:      au,
		ctrl:    ctrl,
		cache:   cache,
		conf:    conf,
		proxies: proxies,
	}

	h.router.Use(
		mid.Logger(zap.L()),
		middleware.StripSlashes,
		middleware.RequestID,
		middleware.Recoverer,
		mid.Prometheus,
		mid.OT,
	)
	if conf.Server.RequestTimeout > 0 {
		h.router.Use(middleware.Timeout(conf.Server.RequestTimeout))
	}

	h.RegisterRoutes()
	h.router.Get("/swagger/*", httpSwagger.WrapHandler)
	h.router.Get(
		"/health", func(w http.ResponseWriter, r *http.Request) {
			utils.SuccessResponse(w, http.StatusOK, "OK")
		},
	)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) Start(port int) {
	h.srv = &http.Server{
		Handler:      h.router,
		Addr:         fmt.Sprintf(":%v", port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info(
		"Starting HTTP server",
		zap.String("addr", h.srv.Addr),
	)

	err := h.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Error("Server error", zap.Error(err))
	}
}

func (h *Handler) Close(ctx context.Context) error {
	if h.srv == nil {
		return nil
	}
	return h.srv.Shutdown(ctx)
}
