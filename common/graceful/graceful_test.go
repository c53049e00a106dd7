package graceful

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestDrainWaitsForInFlight(t *testing.T) {
	resetForTests()
	defer resetForTests()

	done := BeginRequest()
	require.EqualValues(t, 1, InFlight())

	go func() {
		time.Sleep(150 * time.Millisecond)
		done()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, Drain(ctx))
	require.True(t, IsDraining())
}

func TestDrainTimeout(t *testing.T) {
	resetForTests()
	defer resetForTests()

	done := BeginRequest()
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, Drain(ctx), context.DeadlineExceeded)
}

func TestGinRequestTrackerRejectsWhileDraining(t *testing.T) {
	resetForTests()
	defer resetForTests()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinRequestTracker())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.EqualValues(t, 0, InFlight())

	SetDraining()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
