package graceful

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/logger"
)

var (
	inFlightRequests int64
	draining         atomic.Bool
)

// BeginRequest increments the in-flight request counter and returns a function
// to decrement it.
func BeginRequest() func() {
	atomic.AddInt64(&inFlightRequests, 1)
	return func() {
		atomic.AddInt64(&inFlightRequests, -1)
	}
}

// InFlight returns the number of requests currently being served.
func InFlight() int64 {
	return atomic.LoadInt64(&inFlightRequests)
}

// GinRequestTracker counts requests for Drain and rejects new ones with 503 once draining.
func GinRequestTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsDraining() {
			c.AbortWithStatusJSON(503, gin.H{"detail": "server is shutting down"})
			return
		}
		done := BeginRequest()
		defer done()
		c.Next()
	}
}

// Drain waits for in-flight requests to reach zero, bounded by ctx deadline.
func Drain(ctx context.Context) error {
	SetDraining()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		n := InFlight()
		if n == 0 {
			logger.Logger.Info("graceful drain complete")
			return nil
		}
		select {
		case <-ctx.Done():
			logger.Logger.Error("graceful drain timeout", zap.Int64("in_flight_requests", n))
			return ctx.Err()
		case <-ticker.C:
			logger.Logger.Debug("draining...", zap.Int64("in_flight_requests", n))
		}
	}
}

// SetDraining flips the draining flag to true.
func SetDraining() { draining.Store(true) }

// IsDraining returns whether the server is currently draining.
func IsDraining() bool { return draining.Load() }

func resetForTests() {
	draining.Store(false)
	atomic.StoreInt64(&inFlightRequests, 0)
}
