package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader      = "X-Request-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
	requestIDKey         = "request_id"
)

// RequestID propagates the caller's request id or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one access log line per request.
func Logger(log logger.ZapLogger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", GetRequestID(c)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request completed", fields...)
	}
}

// Timeout bounds the request context; store calls see the deadline.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// Idempotency rejects a repeated Idempotency-Key with 409 while the first
// request holds it. Failed requests release the key so they can be retried.
// Requests without the header, or a nil locker, pass straight through.
func Idempotency(locker Locker, ttl time.Duration, log logger.ZapLogger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || locker == nil {
			c.Next()
			return
		}

		lockKey := "idem:ledger:" + c.Request.Method + ":" + c.FullPath() + ":" + key
		value := uuid.NewString()

		ok, err := locker.AcquireLock(c.Request.Context(), lockKey, value, ttl)
		if err != nil {
			log.Warn("idempotency store unavailable, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": "duplicate request",
				"code":  "conflict",
			})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			ctx := context.WithoutCancel(c.Request.Context())
			if err := locker.ReleaseLock(ctx, lockKey, value); err != nil {
				log.Warn("failed to release idempotency key", zap.String("key", lockKey), zap.Error(err))
			}
		}
	}
}
