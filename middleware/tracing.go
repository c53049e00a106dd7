package middleware

import (
	"time"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/common/tracing"
)

// TracingMiddleware logs the latency and time to first byte of every request at debug level.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		writer := &tracingResponseWriter{
			ResponseWriter: c.Writer,
			start:          start,
		}
		c.Writer = writer

		c.Next()

		logger.Logger.Debug("request traced", tracing.WithTraceID(c,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("first_byte", writer.firstByte),
			zap.Duration("latency", time.Since(start)))...)
	}
}

// tracingResponseWriter remembers when the response started.
type tracingResponseWriter struct {
	gin.ResponseWriter
	start     time.Time
	firstByte time.Duration
}

func (w *tracingResponseWriter) mark() {
	if w.firstByte == 0 {
		w.firstByte = time.Since(w.start)
	}
}

func (w *tracingResponseWriter) Write(data []byte) (int, error) {
	w.mark()
	return w.ResponseWriter.Write(data)
}

func (w *tracingResponseWriter) WriteHeader(statusCode int) {
	w.mark()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *tracingResponseWriter) WriteString(s string) (int, error) {
	w.mark()
	return w.ResponseWriter.WriteString(s)
}
