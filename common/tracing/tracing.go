package tracing

import (
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/ctxkey"
)

// GetTraceID extracts the TraceID from gin context using gin-middlewares,
// falling back to the request id when no trace is attached.
func GetTraceID(c *gin.Context) string {
	if traceID, err := gmw.TraceID(c); err == nil {
		return traceID.String()
	}
	return c.GetString(ctxkey.RequestId)
}

// WithTraceID adds trace ID to structured logging fields
func WithTraceID(c *gin.Context, fields ...zap.Field) []zap.Field {
	traceID := GetTraceID(c)
	if traceID == "" {
		return fields
	}
	return append([]zap.Field{zap.String("trace_id", traceID)}, fields...)
}
