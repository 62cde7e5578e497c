package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/andy-arrow/vocal-excellence-backend/utils"
)

// ErrorHandler forwards errors collected on the gin context to Sentry after
// the response has been written, so ops visibility survives even though the
// client already has its answer.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				utils.CaptureError(ginErr.Err, map[string]interface{}{
					"endpoint": c.Request.URL.Path,
					"method":   c.Request.Method,
					"status":   c.Writer.Status(),
				})
			}
		}
	}
}
