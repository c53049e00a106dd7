package model

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/mattn/go-sqlite3"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/logger"
)

const maxBusyBackoff = time.Second

// busyPolicy bounds how long a store write waits on SQLite's writer lock.
type busyPolicy struct {
	retries int
	backoff time.Duration
}

func currentBusyPolicy() busyPolicy {
	return busyPolicy{retries: config.RefServerSQLiteBusyRetries, backoff: config.RefServerSQLiteBusyBackoff}
}

// withStoreRetry runs write, retrying under the configured busy policy.
func withStoreRetry(ctx context.Context, write func() error) error {
	return currentBusyPolicy().run(ctx, write)
}

func (p busyPolicy) run(ctx context.Context, write func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for attempt := 0; ; attempt++ {
		err := write()
		if err == nil || !isBusy(err) {
			return err
		}
		if attempt >= p.retries {
			return errors.Wrapf(err, "database still busy after %d retries", p.retries)
		}

		wait := p.wait(attempt)
		logger.Logger.Debug("database busy, retrying write",
			zap.Int("attempt", attempt+1), zap.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return errors.Wrapf(err, "write abandoned: %v", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// wait doubles the backoff per attempt, capped at maxBusyBackoff.
func (p busyPolicy) wait(attempt int) time.Duration {
	if p.backoff <= 0 {
		return 0
	}
	d := p.backoff
	for range attempt {
		d *= 2
		if d >= maxBusyBackoff {
			return maxBusyBackoff
		}
	}
	return d
}

// isBusy reports whether err is SQLite's busy or locked condition.
func isBusy(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}
