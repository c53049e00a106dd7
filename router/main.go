package router

import (
	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/ctxkey"
	"github.com/agentsim/simcheck/common/graceful"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/middleware"
)

// NewServer builds the reference backend engine with its middleware chain and routes.
func NewServer() *gin.Engine {
	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		middleware.PanicRecover(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	server.Use(gzip.Gzip(gzip.DefaultCompression))
	server.Use(middleware.RequestId())
	server.Use(middleware.TracingMiddleware())
	server.Use(graceful.GinRequestTracker())

	SetRouter(server)
	return server
}

func SetRouter(server *gin.Engine) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.ExposeHeaders = []string{ctxkey.RequestId}
	server.Use(cors.New(corsConfig))

	SetApiRouter(server)
}
