package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/metrics"
)

// Metrics records request latency labelled by the matched route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
