package middleware

import (
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/ctxkey"
	"github.com/agentsim/simcheck/dto"
)

// AbortWithError aborts the request with the uniform {"detail": ...} body.
// Client errors are logged at warn level, server errors at error level.
func AbortWithError(c *gin.Context, statusCode int, err error) {
	logger := gmw.GetLogger(c)
	fields := []zap.Field{
		zap.Int("status_code", statusCode),
		zap.String("request_id", c.GetString(ctxkey.RequestId)),
		zap.Error(err),
	}
	if statusCode < http.StatusInternalServerError {
		logger.Warn("client abort", fields...)
	} else {
		logger.Error("server abort", fields...)
	}

	c.AbortWithStatusJSON(statusCode, dto.ErrorResponse{Detail: err.Error()})
}

// UserID returns the authenticated caller set by UserAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ctxkey.Id)
}
