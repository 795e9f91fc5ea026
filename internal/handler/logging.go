package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the id used to correlate log lines of one request.
const RequestIDHeader = "X-Request-Id"

const loggerContextKey = "__logger"

// RequestLogger attaches a request-scoped zerolog logger and logs each completed request.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		log := base.With().Str("request_id", requestID).Logger()
		c.Set(loggerContextKey, log)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}

func (a *API) logger(c *gin.Context) *zerolog.Logger {
	if value, ok := c.Get(loggerContextKey); ok {
		if log, ok := value.(zerolog.Logger); ok {
			return &log
		}
	}
	return &a.log
}

// internalError logs err and answers with a generic 500 so datastore details stay server-side.
func (a *API) internalError(c *gin.Context, err error, msg string) {
	a.logger(c).Error().Err(err).Msg(msg)
	respondError(c, http.StatusInternalServerError, internalErrorMessage)
}
