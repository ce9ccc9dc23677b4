package integration_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	reconcile "entsoe-feeder/internal/reconcile/domain"
	"entsoe-feeder/internal/reconcile/infrastructure/postgres"
)

func openPostgresRepository(t *testing.T) *postgres.RecordRepository {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	prefix := "it_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "") + "_"
	repo, err := postgres.NewRecordRepository(db, postgres.WithTablePrefix(prefix))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() {
		for _, table := range []string{"entsoe_consumption", "entsoe_production", "entsoe_exchange"} {
			_, _ = db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+prefix+table)
		}
	})
	return repo
}

func floatPtr(v float64) *float64 { return &v }

func TestPostgresRecordRepository_Consumption(t *testing.T) {
	repo := openPostgresRepository(t)
	ctx := context.Background()
	at := time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)

	if _, err := repo.LatestConsumption(ctx, "DE"); !errors.Is(err, reconcile.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := repo.SaveConsumption(ctx, reconcile.ConsumptionRecord{CountryCode: "DE", Datetime: at, Consumption: 50000, Source: reconcile.Source}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// an older reading must not overwrite the stored one
	if err := repo.SaveConsumption(ctx, reconcile.ConsumptionRecord{CountryCode: "DE", Datetime: at.Add(-time.Hour), Consumption: 1, Source: reconcile.Source}); err != nil {
		t.Fatalf("save older: %v", err)
	}
	record, err := repo.LatestConsumption(ctx, "DE")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if record.Consumption != 50000 || !record.Datetime.Equal(at) || record.Source != reconcile.Source {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestPostgresRecordRepository_ProductionNullableGroups(t *testing.T) {
	repo := openPostgresRepository(t)
	ctx := context.Background()
	at := time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)

	older := reconcile.ProductionRecord{CountryCode: "FR", Datetime: at.Add(-time.Hour), Production: reconcile.Production{Nuclear: floatPtr(39000)}, Source: reconcile.Source}
	newer := reconcile.ProductionRecord{CountryCode: "FR", Datetime: at, Production: reconcile.Production{Nuclear: floatPtr(40000), Solar: floatPtr(0)}, Source: reconcile.Source}
	for _, record := range []reconcile.ProductionRecord{newer, older} {
		if err := repo.SaveProduction(ctx, record); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	latest, err := repo.LatestProduction(ctx, "FR")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !latest.Datetime.Equal(at) {
		t.Fatalf("expected %s, got %s", at, latest.Datetime)
	}
	if latest.Production.Solar == nil || *latest.Production.Solar != 0 {
		t.Fatalf("expected reported zero solar, got %v", latest.Production.Solar)
	}
	if latest.Production.Coal != nil {
		t.Fatalf("expected absent coal, got %v", *latest.Production.Coal)
	}

	list, err := repo.ListProduction(ctx, "FR", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || !list[1].Datetime.Equal(older.Datetime) {
		t.Fatalf("expected two records newest first, got %+v", list)
	}
}

func TestPostgresRecordRepository_Exchange(t *testing.T) {
	repo := openPostgresRepository(t)
	ctx := context.Background()
	at := time.Date(2026, time.January, 20, 10, 0, 0, 0, time.UTC)

	if err := repo.SaveExchange(ctx, reconcile.ExchangeRecord{SortedCountryCodes: "DE->FR", Datetime: at, NetFlow: -70, Source: reconcile.Source}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveExchange(ctx, reconcile.ExchangeRecord{SortedCountryCodes: "DE->FR", Datetime: at.Add(time.Hour), NetFlow: 25, Source: reconcile.Source}); err != nil {
		t.Fatalf("save newer: %v", err)
	}
	record, err := repo.LatestExchange(ctx, "DE->FR")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if record.NetFlow != 25 {
		t.Fatalf("expected newest net flow 25, got %v", record.NetFlow)
	}
}
