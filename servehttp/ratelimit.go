package servehttp

import (
	"net/http"

	"groundwork/common"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit token-bucket limiter for the field-action submission route:
// offline clients tend to flush queued actions in bursts after reconnecting.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(limit, burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				&common.ErrorBody{Code: "common.too_many_requests", Message: "too many requests"})
			return
		}
		c.Next()
	}
}
