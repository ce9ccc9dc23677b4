package reconcile

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when no record is stored for a key.
var ErrRecordNotFound = errors.New("reconcile: record not found")

// RecordRepository stores the latest reconciled record per country or pair.
type RecordRepository interface {
	SaveConsumption(ctx context.Context, record ConsumptionRecord) error
	SaveProduction(ctx context.Context, record ProductionRecord) error
	SaveExchange(ctx context.Context, record ExchangeRecord) error

	LatestConsumption(ctx context.Context, countryCode string) (ConsumptionRecord, error)
	LatestProduction(ctx context.Context, countryCode string) (ProductionRecord, error)
	LatestExchange(ctx context.Context, pairKey string) (ExchangeRecord, error)
	ListProduction(ctx context.Context, countryCode string, limit int) ([]ProductionRecord, error)
}
