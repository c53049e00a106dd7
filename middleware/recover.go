package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/common/tracing"
	"github.com/agentsim/simcheck/dto"
)

// PanicRecover turns a handler panic into a logged 500 with the uniform error body.
func PanicRecover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Logger.Error("panic detected", tracing.WithTraceID(c,
					zap.Any("panic", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path))...)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Detail: fmt.Sprintf("internal error: %v", err),
				})
			}
		}()
		c.Next()
	}
}
