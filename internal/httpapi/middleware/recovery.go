package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sllt/railbot/internal/common"
	"go.uber.org/zap"
)

// Recovery converts panics into a JSON 500 instead of gin's default plain
// text, and logs them with structure.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path))
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
