package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"entsoe-feeder/internal/entsoe"
	entsoesource "entsoe-feeder/internal/reconcile/adapters/entsoe"
	"entsoe-feeder/internal/reconcile/application"
	reconcile "entsoe-feeder/internal/reconcile/domain"
	"entsoe-feeder/internal/reconcile/infrastructure/memory"
	"entsoe-feeder/internal/reconcile/infrastructure/postgres"
	"entsoe-feeder/internal/reconcile/interfaces/export"
)

type config struct {
	token      string
	endpoint   string
	dsn        string
	kind       string
	country    string
	from       string
	to         string
	convention string
	exportPath string
	timeout    time.Duration
}

func main() {
	cfg := parseConfig()
	if cfg.token == "" {
		log.Fatal("ENTSOE_TOKEN or -token is required")
	}
	convention, err := reconcile.ParseSignConvention(cfg.convention)
	if err != nil {
		log.Fatalf("invalid sign convention: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg.dsn)
	if err != nil {
		log.Fatalf("open repository: %v", err)
	}
	defer closeRepo()

	client, err := entsoe.NewClient(cfg.endpoint, cfg.token)
	if err != nil {
		log.Fatalf("entsoe client: %v", err)
	}
	source, err := entsoesource.NewSource(client)
	if err != nil {
		log.Fatalf("entsoe source: %v", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)
	svc, err := application.NewFeederService(source, repo, reconcile.SystemClock{}, convention, logger)
	if err != nil {
		log.Fatalf("feeder service: %v", err)
	}

	var result any
	switch cfg.kind {
	case "consumption":
		result, err = svc.RefreshConsumption(ctx, requireCountry(cfg))
	case "production":
		var record *reconcile.ProductionRecord
		record, err = svc.RefreshProduction(ctx, requireCountry(cfg))
		if err == nil && record != nil && cfg.exportPath != "" {
			err = writeExport(cfg.exportPath, *record)
		}
		result = record
	case "exchange":
		if cfg.from == "" || cfg.to == "" {
			log.Fatal("-from and -to are required for exchange")
		}
		result, err = svc.RefreshExchange(ctx, strings.ToUpper(cfg.from), strings.ToUpper(cfg.to))
	default:
		log.Fatalf("unknown kind %q (consumption|production|exchange)", cfg.kind)
	}
	if err != nil {
		log.Fatalf("fetch %s: %v", cfg.kind, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.token, "token", envOrDefault("ENTSOE_TOKEN", ""), "ENTSO-E security token")
	flag.StringVar(&cfg.endpoint, "endpoint", envOrDefault("ENTSOE_ENDPOINT", entsoe.DefaultEndpoint), "ENTSO-E API endpoint")
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN; records are persisted when set")
	flag.StringVar(&cfg.kind, "kind", "production", "record kind: consumption, production or exchange")
	flag.StringVar(&cfg.country, "country", "", "country code for consumption/production")
	flag.StringVar(&cfg.from, "from", "", "first country of an exchange pair")
	flag.StringVar(&cfg.to, "to", "", "second country of an exchange pair")
	flag.StringVar(&cfg.convention, "sign-convention", envOrDefault("EXCHANGE_SIGN_CONVENTION", ""), "exchange sign convention: legacy or canonical")
	flag.StringVar(&cfg.exportPath, "export", "", "write the production snapshot to this .xlsx or .pdf file")
	flag.DurationVar(&cfg.timeout, "timeout", time.Duration(envOrInt("FETCH_TIMEOUT_SECONDS", 120))*time.Second, "overall timeout")
	flag.Parse()
	return cfg
}

func requireCountry(cfg config) string {
	if cfg.country == "" {
		log.Fatal("-country is required")
	}
	return strings.ToUpper(cfg.country)
}

func openRepository(ctx context.Context, dsn string) (reconcile.RecordRepository, func(), error) {
	if dsn == "" {
		return memory.NewRecordRepository(), func() {}, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	repo, err := postgres.NewRecordRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, func() { _ = db.Close() }, nil
}

func writeExport(path string, record reconcile.ProductionRecord) error {
	records := []reconcile.ProductionRecord{record}
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		data, err = export.BuildProductionXLSX(record.CountryCode, records, time.Now().UTC())
	case ".pdf":
		data, err = export.BuildProductionPDF(record.CountryCode, records, time.Now().UTC())
	default:
		return fmt.Errorf("unsupported export extension %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
