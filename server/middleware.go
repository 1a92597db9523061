package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id, logs it and records its
// latency. Unmatched paths share one route label to keep cardinality bounded.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		s.metrics.observeRequest(c.Request.Method, route, status, elapsed)
		s.logger.Debug("[http] %s %s %d %v id=%s", c.Request.Method, c.Request.URL.Path, status, elapsed, id)
	}
}
