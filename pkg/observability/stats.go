package observability

import (
	"context"
	"time"
)

// Stats is a point-in-time snapshot of registry totals.
type Stats struct {
	Packages  int64
	Versions  int64
	Users     int64
	APITokens int64
}

// SetStats publishes a snapshot to the business gauges.
func (m *Metrics) SetStats(s Stats) {
	m.PackagesTotal.Set(float64(s.Packages))
	m.VersionsTotal.Set(float64(s.Versions))
	m.UsersTotal.Set(float64(s.Users))
	m.APITokensActive.Set(float64(s.APITokens))
}

// StatsPoller keeps the business gauges fresh by periodically collecting a
// snapshot from the backing stores.
type StatsPoller struct {
	metrics  *Metrics
	logger   *Logger
	interval time.Duration
	collect  func(context.Context) (Stats, error)
}

// NewStatsPoller creates a poller. The collect function is called once at
// startup and then once per interval.
func NewStatsPoller(metrics *Metrics, logger *Logger, interval time.Duration, collect func(context.Context) (Stats, error)) *StatsPoller {
	return &StatsPoller{metrics: metrics, logger: logger, interval: interval, collect: collect}
}

// Run refreshes the gauges until ctx is cancelled. A failed collection keeps
// the previous values.
func (p *StatsPoller) Run(ctx context.Context) {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *StatsPoller) refresh(ctx context.Context) {
	stats, err := p.collect(ctx)
	if err != nil {
		p.logger.WithError(err).Error("stats collection failed")
		return
	}
	p.metrics.SetStats(stats)
}
