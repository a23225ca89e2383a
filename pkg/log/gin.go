package log

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// AccessOptions tunes how GinMiddleware reports requests.
type AccessOptions struct {
	// QuietPaths are logged at debug level, typically probes.
	QuietPaths []string
	// StreamPaths hold long-lived connections; they are reported as closed
	// streams with their duration rather than as completed requests.
	StreamPaths []string
}

// GinMiddleware tags each request with an X-Request-ID, attaches a request
// logger to the context and emits one access line when the handler returns.
// Handlers that know which student a request concerned store it under
// FieldStudentID on the gin context.
func GinMiddleware(logger zerolog.Logger, opts AccessOptions) gin.HandlerFunc {
	quiet := toSet(opts.QuietPaths)
	streams := toSet(opts.StreamPaths)

	return func(c *gin.Context) {
		start := time.Now()

		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)

		path := c.Request.URL.Path
		reqLogger := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, path).
			Str(FieldClientIP, c.ClientIP()).
			Logger()
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)

		var evt *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			evt = reqLogger.Error()
		case status >= http.StatusBadRequest:
			evt = reqLogger.Warn()
		case quiet[path]:
			evt = reqLogger.Debug()
		default:
			evt = reqLogger.Info()
		}
		evt = evt.Int(FieldStatus, status)

		if studentID := c.GetString(FieldStudentID); studentID != "" {
			evt = evt.Str(FieldStudentID, studentID)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}

		if streams[path] {
			evt.Dur("duration", elapsed).Msg("stream closed")
			return
		}
		evt.Float64(FieldLatency, float64(elapsed.Microseconds())/1000).Msg("request completed")
	}
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}
