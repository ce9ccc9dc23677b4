package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"entsoe-feeder/internal/observability/metrics"
	reconcile "entsoe-feeder/internal/reconcile/domain"
	series "entsoe-feeder/internal/series/domain"
)

// ErrInvalidRequest is returned for empty or self-referencing country arguments.
var ErrInvalidRequest = errors.New("feeder: invalid request")

const (
	kindConsumption = "consumption"
	kindProduction  = "production"
	kindExchange    = "exchange"
)

// Source fetches parsed upstream series blocks.
type Source interface {
	Consumption(ctx context.Context, countryCode string) ([]series.Block, error)
	Production(ctx context.Context, countryCode string, category reconcile.Category) ([]series.Block, error)
	Exchange(ctx context.Context, fromCountry, toCountry string) ([]series.Block, error)
}

// FeederService fetches, reconciles and stores records.
type FeederService struct {
	source      Source
	repo        reconcile.RecordRepository
	consumption *reconcile.ConsumptionReducer
	production  *reconcile.ProductionBuilder
	exchange    *reconcile.ExchangeReconciler
	logger      *log.Logger
}

// NewFeederService constructs a FeederService.
func NewFeederService(source Source, repo reconcile.RecordRepository, clock reconcile.Clock, convention reconcile.SignConvention, logger *log.Logger) (*FeederService, error) {
	if source == nil {
		return nil, errors.New("feeder: nil source")
	}
	if repo == nil {
		return nil, errors.New("feeder: nil repository")
	}
	if clock == nil {
		clock = reconcile.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FeederService{
		source:      source,
		repo:        repo,
		consumption: reconcile.NewConsumptionReducer(clock),
		production:  reconcile.NewProductionBuilder(clock),
		exchange:    reconcile.NewExchangeReconciler(clock, convention),
		logger:      logger,
	}, nil
}

// RefreshConsumption reconciles and stores the latest load of a country.
// A nil record with a nil error means upstream had no usable point.
func (s *FeederService) RefreshConsumption(ctx context.Context, countryCode string) (*reconcile.ConsumptionRecord, error) {
	if countryCode == "" {
		return nil, fmt.Errorf("%w: empty country", ErrInvalidRequest)
	}
	started := time.Now()

	blocks, err := s.source.Consumption(ctx, countryCode)
	if err != nil {
		metrics.ObserveReconcile(kindConsumption, metrics.ResultError, time.Since(started))
		return nil, fmt.Errorf("feeder: fetch consumption %s: %w", countryCode, err)
	}
	record, ok := s.consumption.Reduce(countryCode, blocks)
	if !ok {
		metrics.ObserveReconcile(kindConsumption, metrics.ResultEmpty, time.Since(started))
		return nil, nil
	}
	if err := s.repo.SaveConsumption(ctx, record); err != nil {
		metrics.ObserveReconcile(kindConsumption, metrics.ResultError, time.Since(started))
		return nil, err
	}
	metrics.ObserveReconcile(kindConsumption, metrics.ResultSuccess, time.Since(started))
	return &record, nil
}

// RefreshProduction queries every category, reconciles them and stores the snapshot.
// Categories that fail upstream or carry unusable series are logged and left out.
func (s *FeederService) RefreshProduction(ctx context.Context, countryCode string) (*reconcile.ProductionRecord, error) {
	if countryCode == "" {
		return nil, fmt.Errorf("%w: empty country", ErrInvalidRequest)
	}
	started := time.Now()

	perCategory := make(map[reconcile.Category][]series.Block)
	for _, category := range reconcile.Categories() {
		if err := ctx.Err(); err != nil {
			metrics.ObserveReconcile(kindProduction, metrics.ResultError, time.Since(started))
			return nil, err
		}
		blocks, err := s.source.Production(ctx, countryCode, category)
		if err != nil {
			if ctx.Err() != nil {
				metrics.ObserveReconcile(kindProduction, metrics.ResultError, time.Since(started))
				return nil, ctx.Err()
			}
			s.logger.Printf("feeder: production category skipped: country=%s category=%s err=%v", countryCode, category.Code(), err)
			metrics.IncCategoryFailure(category.Code())
			continue
		}
		if len(blocks) > 0 {
			perCategory[category] = blocks
		}
	}

	record, ok, failures := s.production.Build(countryCode, perCategory)
	for _, failure := range failures {
		s.logger.Printf("feeder: production category dropped: country=%s category=%s err=%v", countryCode, failure.Category.Code(), failure.Err)
		metrics.IncCategoryFailure(failure.Category.Code())
	}
	if !ok {
		metrics.ObserveReconcile(kindProduction, metrics.ResultEmpty, time.Since(started))
		return nil, nil
	}
	if err := s.repo.SaveProduction(ctx, record); err != nil {
		metrics.ObserveReconcile(kindProduction, metrics.ResultError, time.Since(started))
		return nil, err
	}
	metrics.ObserveReconcile(kindProduction, metrics.ResultSuccess, time.Since(started))
	return &record, nil
}

// RefreshExchange reconciles both flow directions of a pair and stores the net flow.
// The reverse direction is only queried when the forward one returned blocks.
func (s *FeederService) RefreshExchange(ctx context.Context, a, b string) (*reconcile.ExchangeRecord, error) {
	if a == "" || b == "" || a == b {
		return nil, fmt.Errorf("%w: pair %q/%q", ErrInvalidRequest, a, b)
	}
	started := time.Now()

	aToB, err := s.source.Exchange(ctx, a, b)
	if err != nil {
		metrics.ObserveReconcile(kindExchange, metrics.ResultError, time.Since(started))
		return nil, fmt.Errorf("feeder: fetch exchange %s->%s: %w", a, b, err)
	}
	var bToA []series.Block
	if len(aToB) > 0 {
		bToA, err = s.source.Exchange(ctx, b, a)
		if err != nil {
			metrics.ObserveReconcile(kindExchange, metrics.ResultError, time.Since(started))
			return nil, fmt.Errorf("feeder: fetch exchange %s->%s: %w", b, a, err)
		}
	}

	record, ok := s.exchange.Reconcile(a, b, aToB, bToA)
	if !ok {
		metrics.ObserveReconcile(kindExchange, metrics.ResultEmpty, time.Since(started))
		return nil, nil
	}
	if err := s.repo.SaveExchange(ctx, record); err != nil {
		metrics.ObserveReconcile(kindExchange, metrics.ResultError, time.Since(started))
		return nil, err
	}
	metrics.ObserveReconcile(kindExchange, metrics.ResultSuccess, time.Since(started))
	return &record, nil
}
