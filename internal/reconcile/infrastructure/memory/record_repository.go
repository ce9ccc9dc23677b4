package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	reconcile "entsoe-feeder/internal/reconcile/domain"
)

// RecordRepository is an in-memory record store for demo/testing.
// Production snapshots keep their history per country; the other kinds keep the latest only.
type RecordRepository struct {
	mu          sync.RWMutex
	consumption map[string]reconcile.ConsumptionRecord
	production  map[string]map[time.Time]reconcile.ProductionRecord
	exchange    map[string]reconcile.ExchangeRecord
}

// NewRecordRepository constructs a repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		consumption: make(map[string]reconcile.ConsumptionRecord),
		production:  make(map[string]map[time.Time]reconcile.ProductionRecord),
		exchange:    make(map[string]reconcile.ExchangeRecord),
	}
}

// SaveConsumption keeps the record when it is not older than the stored one.
func (r *RecordRepository) SaveConsumption(ctx context.Context, record reconcile.ConsumptionRecord) error {
	_ = ctx
	if record.CountryCode == "" {
		return reconcile.ErrEmptyCountry
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.consumption[record.CountryCode]; ok && current.Datetime.After(record.Datetime) {
		return nil
	}
	r.consumption[record.CountryCode] = record
	return nil
}

// SaveProduction upserts the snapshot for its country and datetime.
func (r *RecordRepository) SaveProduction(ctx context.Context, record reconcile.ProductionRecord) error {
	_ = ctx
	if record.CountryCode == "" {
		return reconcile.ErrEmptyCountry
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byTime := r.production[record.CountryCode]
	if byTime == nil {
		byTime = make(map[time.Time]reconcile.ProductionRecord)
		r.production[record.CountryCode] = byTime
	}
	byTime[record.Datetime.UTC()] = record
	return nil
}

// SaveExchange keeps the record when it is not older than the stored one.
func (r *RecordRepository) SaveExchange(ctx context.Context, record reconcile.ExchangeRecord) error {
	_ = ctx
	if record.SortedCountryCodes == "" {
		return reconcile.ErrEmptyCountry
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.exchange[record.SortedCountryCodes]; ok && current.Datetime.After(record.Datetime) {
		return nil
	}
	r.exchange[record.SortedCountryCodes] = record
	return nil
}

// LatestConsumption returns the stored load record of a country.
func (r *RecordRepository) LatestConsumption(ctx context.Context, countryCode string) (reconcile.ConsumptionRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.consumption[countryCode]
	if !ok {
		return reconcile.ConsumptionRecord{}, reconcile.ErrRecordNotFound
	}
	return record, nil
}

// LatestProduction returns the most recent snapshot of a country.
func (r *RecordRepository) LatestProduction(ctx context.Context, countryCode string) (reconcile.ProductionRecord, error) {
	records, err := r.ListProduction(ctx, countryCode, 1)
	if err != nil {
		return reconcile.ProductionRecord{}, err
	}
	if len(records) == 0 {
		return reconcile.ProductionRecord{}, reconcile.ErrRecordNotFound
	}
	return records[0], nil
}

// LatestExchange returns the stored net flow of a pair key.
func (r *RecordRepository) LatestExchange(ctx context.Context, pairKey string) (reconcile.ExchangeRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.exchange[pairKey]
	if !ok {
		return reconcile.ExchangeRecord{}, reconcile.ErrRecordNotFound
	}
	return record, nil
}

// ListProduction returns up to limit snapshots of a country, most recent first.
func (r *RecordRepository) ListProduction(ctx context.Context, countryCode string, limit int) ([]reconcile.ProductionRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	byTime := r.production[countryCode]
	records := make([]reconcile.ProductionRecord, 0, len(byTime))
	for _, record := range byTime {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Datetime.After(records[j].Datetime) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
