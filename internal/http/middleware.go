package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cashtrackr/internal/access"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	scopeKey        = "access_scope"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
		}).Info("request")
	}
}

// guard runs the access stages for every request and stores the resulting
// scope for the handler.
func (h *Handler) guard(stages ...access.Stage) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := access.Run(c.Request.Context(), c, stages...)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Set(scopeKey, scope)
		c.Next()
	}
}

func scopeOf(c *gin.Context) access.Scope {
	if v, ok := c.Get(scopeKey); ok {
		if scope, ok := v.(access.Scope); ok {
			return scope
		}
	}
	return access.Scope{}
}
