package server

import (
	"net/http"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger/handler"
	"github.com/fekuna/omnipos-ledger-service/internal/middleware"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

type Options struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	// Locker enables Idempotency-Key handling on POST routes when non-nil.
	Locker         middleware.Locker
	IdempotencyTTL time.Duration
	Debug          bool
}

// New wires the gin engine with the ledger routes and wraps it in CORS.
func New(h *handler.LedgerHandler, opts Options, log logger.ZapLogger) http.Handler {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log.Named("access")))
	r.Use(middleware.Timeout(opts.RequestTimeout))

	var mutating []gin.HandlerFunc
	if opts.Locker != nil {
		mutating = append(mutating, middleware.Idempotency(opts.Locker, opts.IdempotencyTTL, log.Named("idempotency")))
	}
	h.Register(r, mutating...)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader, middleware.IdempotencyKeyHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	log.Info("Router initialized")
	return c.Handler(r)
}
