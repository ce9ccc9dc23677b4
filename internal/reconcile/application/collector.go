package application

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"entsoe-feeder/internal/observability/metrics"
)

// CollectResult summarises one collection run.
type CollectResult struct {
	RunID     string
	Succeeded int
	Empty     int
	Failed    int
}

// Collector refreshes every configured country and pair.
type Collector struct {
	service     *FeederService
	countries   []string
	pairs       []Pair
	parallelism int
	logger      *log.Logger
}

// NewCollector constructs a Collector.
func NewCollector(service *FeederService, countries []string, pairs []Pair, parallelism int, logger *log.Logger) *Collector {
	if parallelism <= 0 {
		parallelism = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Collector{
		service:     service,
		countries:   countries,
		pairs:       pairs,
		parallelism: parallelism,
		logger:      logger,
	}
}

// CollectOnce refreshes consumption and production per country and the net flow per pair.
// Task failures are logged and counted; only context cancellation aborts the run.
func (c *Collector) CollectOnce(ctx context.Context) (CollectResult, error) {
	result := CollectResult{RunID: uuid.NewString()}
	if c == nil || c.service == nil {
		return result, nil
	}
	started := time.Now()

	var succeeded, empty, failed atomic.Int64
	track := func(task string, found bool, err error) error {
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			failed.Add(1)
			c.logger.Printf("feeder collect error: run=%s task=%s err=%v", result.RunID, task, err)
		case !found:
			empty.Add(1)
			c.logger.Printf("feeder collect: run=%s task=%s no data", result.RunID, task)
		default:
			succeeded.Add(1)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for _, country := range c.countries {
		country := country
		g.Go(func() error {
			record, err := c.service.RefreshConsumption(gctx, country)
			return track("consumption:"+country, record != nil, err)
		})
		g.Go(func() error {
			record, err := c.service.RefreshProduction(gctx, country)
			return track("production:"+country, record != nil, err)
		})
	}
	for _, pair := range c.pairs {
		pair := pair
		g.Go(func() error {
			record, err := c.service.RefreshExchange(gctx, pair.From, pair.To)
			return track("exchange:"+pair.String(), record != nil, err)
		})
	}
	err := g.Wait()

	result.Succeeded = int(succeeded.Load())
	result.Empty = int(empty.Load())
	result.Failed = int(failed.Load())

	outcome := metrics.ResultSuccess
	if err != nil || result.Failed > 0 {
		outcome = metrics.ResultError
	}
	metrics.ObserveCollectRun(outcome, time.Since(started))
	c.logger.Printf("feeder collect done: run=%s ok=%d empty=%d failed=%d elapsed=%s",
		result.RunID, result.Succeeded, result.Empty, result.Failed, time.Since(started).Round(time.Millisecond))
	return result, err
}

// Scheduler triggers collection runs on a fixed interval.
type Scheduler struct {
	collector *Collector
	interval  time.Duration
	logger    *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(collector *Collector, interval time.Duration, logger *log.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{collector: collector, interval: interval, logger: logger}
}

// Start runs a collection immediately and then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.collector == nil {
		return
	}
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.collector.CollectOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.Printf("feeder schedule error: %v", err)
	}
}
