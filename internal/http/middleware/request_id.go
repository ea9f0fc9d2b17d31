package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"supportlens.app/triage/common/id"
	"supportlens.app/triage/common/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns every request a snowflake id, echoes it in the response
// headers and enriches the request context so all log lines carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := id.New()

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
			RequestID: logger.Ptr(rid),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(requestIDHeader, strconv.FormatInt(rid, 10))

		c.Next()
	}
}
