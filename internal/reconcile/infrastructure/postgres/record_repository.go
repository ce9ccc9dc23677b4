package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	reconcile "entsoe-feeder/internal/reconcile/domain"
)

const (
	defaultConsumptionTable = "entsoe_consumption"
	defaultProductionTable  = "entsoe_production"
	defaultExchangeTable    = "entsoe_exchange"
)

// RecordRepository is a Postgres implementation of reconcile.RecordRepository.
type RecordRepository struct {
	db               *sql.DB
	consumptionTable string
	productionTable  string
	exchangeTable    string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*RecordRepository)

// WithTablePrefix prefixes every table name, e.g. for test isolation.
func WithTablePrefix(prefix string) RepositoryOption {
	return func(repo *RecordRepository) {
		if prefix == "" {
			return
		}
		repo.consumptionTable = prefix + defaultConsumptionTable
		repo.productionTable = prefix + defaultProductionTable
		repo.exchangeTable = prefix + defaultExchangeTable
	}
}

// NewRecordRepository creates a repository using the default table names.
func NewRecordRepository(db *sql.DB, opts ...RepositoryOption) (*RecordRepository, error) {
	if db == nil {
		return nil, errors.New("record repository: nil db")
	}
	repo := &RecordRepository{
		db:               db,
		consumptionTable: defaultConsumptionTable,
		productionTable:  defaultProductionTable,
		exchangeTable:    defaultExchangeTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

// EnsureSchema creates the record tables when missing.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	country_code TEXT PRIMARY KEY,
	datetime TIMESTAMPTZ NOT NULL,
	consumption DOUBLE PRECISION NOT NULL,
	source TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, r.consumptionTable),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	country_code TEXT NOT NULL,
	datetime TIMESTAMPTZ NOT NULL,
	%s,
	source TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (country_code, datetime)
)`, r.productionTable, fuelColumnDefinitions()),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	sorted_country_codes TEXT PRIMARY KEY,
	datetime TIMESTAMPTZ NOT NULL,
	net_flow DOUBLE PRECISION NOT NULL,
	source TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, r.exchangeTable),
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveConsumption upserts the load record unless a newer one is stored.
func (r *RecordRepository) SaveConsumption(ctx context.Context, record reconcile.ConsumptionRecord) error {
	if record.CountryCode == "" {
		return reconcile.ErrEmptyCountry
	}
	query := fmt.Sprintf(`
INSERT INTO %s (country_code, datetime, consumption, source, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (country_code) DO UPDATE SET
	datetime = EXCLUDED.datetime,
	consumption = EXCLUDED.consumption,
	source = EXCLUDED.source,
	updated_at = NOW()
WHERE %s.datetime <= EXCLUDED.datetime`, r.consumptionTable, r.consumptionTable)

	_, err := r.db.ExecContext(ctx, query, record.CountryCode, record.Datetime.UTC(), record.Consumption, record.Source)
	return err
}

// SaveProduction upserts the snapshot for its country and datetime.
func (r *RecordRepository) SaveProduction(ctx context.Context, record reconcile.ProductionRecord) error {
	if record.CountryCode == "" {
		return reconcile.ErrEmptyCountry
	}
	columns := fuelColumns()
	updates := make([]string, 0, len(columns)+1)
	for _, column := range columns {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}
	updates = append(updates, "source = EXCLUDED.source", "updated_at = NOW()")

	query := fmt.Sprintf(`
INSERT INTO %s (country_code, datetime, %s, source, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
ON CONFLICT (country_code, datetime) DO UPDATE SET
	%s`, r.productionTable, strings.Join(columns, ", "), strings.Join(updates, ",\n\t"))

	args := []any{record.CountryCode, record.Datetime.UTC()}
	for _, group := range reconcile.FuelGroups() {
		args = append(args, nullable(record.Production.Value(group)))
	}
	args = append(args, record.Source)

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// SaveExchange upserts the net flow unless a newer one is stored.
func (r *RecordRepository) SaveExchange(ctx context.Context, record reconcile.ExchangeRecord) error {
	if record.SortedCountryCodes == "" {
		return reconcile.ErrEmptyCountry
	}
	query := fmt.Sprintf(`
INSERT INTO %s (sorted_country_codes, datetime, net_flow, source, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (sorted_country_codes) DO UPDATE SET
	datetime = EXCLUDED.datetime,
	net_flow = EXCLUDED.net_flow,
	source = EXCLUDED.source,
	updated_at = NOW()
WHERE %s.datetime <= EXCLUDED.datetime`, r.exchangeTable, r.exchangeTable)

	_, err := r.db.ExecContext(ctx, query, record.SortedCountryCodes, record.Datetime.UTC(), record.NetFlow, record.Source)
	return err
}

// LatestConsumption loads the stored load record of a country.
func (r *RecordRepository) LatestConsumption(ctx context.Context, countryCode string) (reconcile.ConsumptionRecord, error) {
	query := fmt.Sprintf(`
SELECT country_code, datetime, consumption, source
FROM %s
WHERE country_code = $1`, r.consumptionTable)

	var record reconcile.ConsumptionRecord
	err := r.db.QueryRowContext(ctx, query, countryCode).Scan(&record.CountryCode, &record.Datetime, &record.Consumption, &record.Source)
	if err == sql.ErrNoRows {
		return reconcile.ConsumptionRecord{}, reconcile.ErrRecordNotFound
	}
	if err != nil {
		return reconcile.ConsumptionRecord{}, err
	}
	record.Datetime = record.Datetime.UTC()
	return record, nil
}

// LatestProduction loads the most recent snapshot of a country.
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

// ListProduction loads up to limit snapshots of a country, most recent first.
func (r *RecordRepository) ListProduction(ctx context.Context, countryCode string, limit int) ([]reconcile.ProductionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
SELECT country_code, datetime, %s, source
FROM %s
WHERE country_code = $1
ORDER BY datetime DESC
LIMIT $2`, strings.Join(fuelColumns(), ", "), r.productionTable)

	rows, err := r.db.QueryContext(ctx, query, countryCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []reconcile.ProductionRecord
	for rows.Next() {
		record, err := scanProduction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// LatestExchange loads the stored net flow of a pair key.
func (r *RecordRepository) LatestExchange(ctx context.Context, pairKey string) (reconcile.ExchangeRecord, error) {
	query := fmt.Sprintf(`
SELECT sorted_country_codes, datetime, net_flow, source
FROM %s
WHERE sorted_country_codes = $1`, r.exchangeTable)

	var record reconcile.ExchangeRecord
	err := r.db.QueryRowContext(ctx, query, pairKey).Scan(&record.SortedCountryCodes, &record.Datetime, &record.NetFlow, &record.Source)
	if err == sql.ErrNoRows {
		return reconcile.ExchangeRecord{}, reconcile.ErrRecordNotFound
	}
	if err != nil {
		return reconcile.ExchangeRecord{}, err
	}
	record.Datetime = record.Datetime.UTC()
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduction(row rowScanner) (reconcile.ProductionRecord, error) {
	var (
		record reconcile.ProductionRecord
		groups [9]sql.NullFloat64
	)
	dest := []any{&record.CountryCode, &record.Datetime}
	for i := range groups {
		dest = append(dest, &groups[i])
	}
	dest = append(dest, &record.Source)
	if err := row.Scan(dest...); err != nil {
		return reconcile.ProductionRecord{}, err
	}
	record.Datetime = record.Datetime.UTC()

	p := &record.Production
	targets := []**float64{&p.Biomass, &p.Coal, &p.Gas, &p.Hydro, &p.Nuclear, &p.Oil, &p.Solar, &p.Wind, &p.Unknown}
	for i, target := range targets {
		if groups[i].Valid {
			value := groups[i].Float64
			*target = &value
		}
	}
	return record, nil
}

func fuelColumns() []string {
	groups := reconcile.FuelGroups()
	columns := make([]string, 0, len(groups))
	for _, group := range groups {
		columns = append(columns, string(group))
	}
	return columns
}

func fuelColumnDefinitions() string {
	columns := fuelColumns()
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		defs = append(defs, column+" DOUBLE PRECISION")
	}
	return strings.Join(defs, ",\n\t")
}

func nullable(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}
