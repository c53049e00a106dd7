package model

import (
	"context"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/common/config"
)

var errBusy = sqlite3.Error{Code: sqlite3.ErrBusy}

func TestBusyPolicyRetriesUntilWriteLands(t *testing.T) {
	attempts := 0
	err := busyPolicy{retries: 3, backoff: time.Millisecond}.run(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.Wrap(errBusy, "insert agent")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestBusyPolicyGivesUpAfterBudget(t *testing.T) {
	for _, retries := range []int{0, 2} {
		attempts := 0
		err := busyPolicy{retries: retries, backoff: time.Millisecond}.run(context.Background(), func() error {
			attempts++
			return sqlite3.Error{Code: sqlite3.ErrLocked}
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "still busy")
		require.Equal(t, retries+1, attempts)
	}
}

func TestBusyPolicyIgnoresOtherErrors(t *testing.T) {
	for _, cause := range []error{
		sqlite3.Error{Code: sqlite3.ErrConstraint},
		// only the driver's error code counts, not message text
		errors.New("database is locked"),
	} {
		attempts := 0
		err := busyPolicy{retries: 5, backoff: time.Millisecond}.run(context.Background(), func() error {
			attempts++
			return cause
		})
		require.ErrorIs(t, err, cause)
		require.Equal(t, 1, attempts)
	}
}

func TestBusyPolicyStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := busyPolicy{retries: 5, backoff: time.Hour}.run(ctx, func() error {
		attempts++
		return errBusy
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "write abandoned")
	require.Equal(t, 1, attempts)
}

func TestBusyPolicyWait(t *testing.T) {
	p := busyPolicy{backoff: 20 * time.Millisecond}
	require.Equal(t, 20*time.Millisecond, p.wait(0))
	require.Equal(t, 40*time.Millisecond, p.wait(1))
	require.Equal(t, 80*time.Millisecond, p.wait(2))
	require.Equal(t, maxBusyBackoff, p.wait(20))
	require.Zero(t, busyPolicy{}.wait(3))
}

func TestBusyPolicyFollowsConfig(t *testing.T) {
	retries, backoff := config.RefServerSQLiteBusyRetries, config.RefServerSQLiteBusyBackoff
	defer func() {
		config.RefServerSQLiteBusyRetries, config.RefServerSQLiteBusyBackoff = retries, backoff
	}()
	config.RefServerSQLiteBusyRetries = 1
	config.RefServerSQLiteBusyBackoff = time.Millisecond

	require.Equal(t, busyPolicy{retries: 1, backoff: time.Millisecond}, currentBusyPolicy())
	attempts := 0
	err := withStoreRetry(context.Background(), func() error {
		attempts++
		return errBusy
	})
	require.Error(t, err)
	require.Equal(t, 2, attempts)
}

func TestIsBusy(t *testing.T) {
	require.True(t, isBusy(errBusy))
	require.True(t, isBusy(errors.Wrap(sqlite3.Error{Code: sqlite3.ErrLocked}, "update state")))
	require.False(t, isBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	require.False(t, isBusy(errors.New("database is busy")))
	require.False(t, isBusy(nil))
}
