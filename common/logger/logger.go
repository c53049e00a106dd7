package logger

import (
	"fmt"
	"os"
	"sync"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/common/config"
)

var (
	Logger      glog.Logger
	initLogOnce sync.Once
)

// init initializes the logger automatically when the package is imported
func init() {
	initLogger()
}

func initLogger() {
	initLogOnce.Do(func() {
		var err error
		level := glog.LevelInfo
		if config.DebugEnabled {
			level = glog.LevelDebug
		}

		Logger, err = glog.NewConsoleWithName("simcheck", level)
		if err != nil {
			panic(fmt.Sprintf("failed to create logger: %+v", err))
		}
	})
}

// ForRun returns a child logger tagged with the driver name and the host it runs on.
func ForRun(driver string) glog.Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return Logger.With(
		zap.String("driver", driver),
		zap.String("host", hostname),
	)
}
