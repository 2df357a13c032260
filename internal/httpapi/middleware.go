package httpapi

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/internal/storage"
)

const (
	requestIDHeader  = "X-Request-ID"
	ctxKeyRequestID  = "request_id"
	ctxKeyAPIKeyName = "api_key_name"
)

// RequestLogger logs one line per request on completion, tagged with a
// stable request ID (echoed in the X-Request-ID response header) so a
// request can be matched to its log line.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		args := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		}
		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "request completed", args...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "request completed", args...)
		default:
			logger.InfoContext(c.Request.Context(), "request completed", args...)
		}
	}
}

// Recovery turns a panicking handler into a 500 response instead of a
// crashed process, mirroring the isolation internal/observer.Manager gives
// individual observers.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Get(ctxKeyRequestID)
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					"request_id", requestID,
					"path", c.Request.URL.Path,
					"error", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(ErrInternal.HTTPStatus, ErrInternal)
			}
		}()
		c.Next()
	}
}

// APIKeyAuth requires a "Bearer <key>" Authorization header verified
// against repo, attaching the verified key's name to the request context.
func APIKeyAuth(repo *storage.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			respondError(c, ErrUnauthorized)
			return
		}

		model, err := repo.Verify(c.Request.Context(), header[len(prefix):])
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxKeyAPIKeyName, model.Name)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyRequestID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
