// Command refserver runs the in-process reference backend as a standalone HTTP server,
// so every simcheck suite can be dry-run locally.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/graceful"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/common/network"
	"github.com/agentsim/simcheck/model"
	"github.com/agentsim/simcheck/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Logger.Error("reference backend stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if config.RefServerTestLoginSubnets != "" {
		if err := network.IsValidSubnets(config.RefServerTestLoginSubnets); err != nil {
			return errors.Wrap(err, "REFSERVER_TEST_LOGIN_SUBNETS")
		}
	}
	if err := model.InitDB(config.RefServerSQLitePath); err != nil {
		return errors.Wrap(err, "init database")
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.Logger.Error("failed to close database", zap.Error(err))
		}
	}()

	defaults := config.Defaults()
	if err := model.CreateAdminIfNeed(defaults.AdminEmail, defaults.AdminPassword); err != nil {
		return errors.Wrap(err, "create admin account")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.RefServerPort),
		Handler:           router.NewServer(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Logger.Info("reference backend started",
			zap.String("address", fmt.Sprintf("http://localhost:%d", config.RefServerPort)),
			zap.Bool("fail_providers", config.RefServerFailProviders))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Logger.Info("shutting down reference backend")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := graceful.Drain(shutdownCtx); err != nil {
			logger.Logger.Warn("drain incomplete", zap.Error(err))
		}
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	})

	return g.Wait()
}
