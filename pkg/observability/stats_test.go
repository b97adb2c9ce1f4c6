package observability

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetStats(t *testing.T) {
	m := NewMetrics(nil)

	m.SetStats(Stats{Packages: 3, Versions: 7, Users: 2, APITokens: 5})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PackagesTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.VersionsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UsersTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.APITokensActive))
}

func TestStatsPollerRefreshesOnStart(t *testing.T) {
	m := NewMetrics(nil)
	logger := NewLogger(ErrorLevel, io.Discard)
	collected := make(chan struct{}, 1)

	poller := NewStatsPoller(m, logger, time.Hour, func(context.Context) (Stats, error) {
		select {
		case collected <- struct{}{}:
		default:
		}
		return Stats{Packages: 1, Versions: 4}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	<-collected
	cancel()
	<-done

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackagesTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.VersionsTotal))
}

func TestStatsPollerKeepsValuesOnError(t *testing.T) {
	m := NewMetrics(nil)
	logger := NewLogger(ErrorLevel, io.Discard)
	m.SetStats(Stats{Packages: 9})

	poller := NewStatsPoller(m, logger, time.Hour, func(context.Context) (Stats, error) {
		return Stats{}, errors.New("db down")
	})
	poller.refresh(context.Background())

	assert.Equal(t, 9.0, testutil.ToFloat64(m.PackagesTotal))
}
