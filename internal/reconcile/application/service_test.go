package application

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	reconcile "entsoe-feeder/internal/reconcile/domain"
	"entsoe-feeder/internal/reconcile/infrastructure/memory"
	series "entsoe-feeder/internal/series/domain"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var (
	dayStart = time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	nowAt    = dayStart.Add(5 * time.Hour)
)

type stubSource struct {
	mu          sync.Mutex
	consumption map[string][]series.Block
	production  map[string]map[reconcile.Category][]series.Block
	prodErr     map[reconcile.Category]error
	exchange    map[string][]series.Block
	exchangeErr error
	calls       []string
}

func newStubSource() *stubSource {
	return &stubSource{
		consumption: make(map[string][]series.Block),
		production:  make(map[string]map[reconcile.Category][]series.Block),
		prodErr:     make(map[reconcile.Category]error),
		exchange:    make(map[string][]series.Block),
	}
}

func (s *stubSource) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubSource) Consumption(_ context.Context, country string) ([]series.Block, error) {
	s.record("consumption:" + country)
	return s.consumption[country], nil
}

func (s *stubSource) Production(_ context.Context, country string, category reconcile.Category) ([]series.Block, error) {
	s.record("production:" + country + ":" + category.Code())
	if err := s.prodErr[category]; err != nil {
		return nil, err
	}
	return s.production[country][category], nil
}

func (s *stubSource) Exchange(_ context.Context, from, to string) ([]series.Block, error) {
	s.record("exchange:" + from + "-" + to)
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.exchange[from+"-"+to], nil
}

func hourlyBlock(direction series.Direction, values map[int]float64) series.Block {
	block := series.Block{Resolution: "PT60M", Start: dayStart, Direction: direction}
	for hour := 1; hour <= 24; hour++ {
		if v, ok := values[hour]; ok {
			block.Entries = append(block.Entries, series.Entry{Position: hour, Quantity: v})
		}
	}
	return block
}

func newTestService(t *testing.T, source Source, convention reconcile.SignConvention) (*FeederService, *memory.RecordRepository) {
	t.Helper()
	repo := memory.NewRecordRepository()
	svc, err := NewFeederService(source, repo, fixedClock{now: nowAt}, convention, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new feeder service: %v", err)
	}
	return svc, repo
}

func TestFeederService_RefreshProductionSkipsFailedCategories(t *testing.T) {
	source := newStubSource()
	source.production["DE"] = map[reconcile.Category][]series.Block{
		reconcile.Nuclear: {hourlyBlock(series.DirectionProduction, map[int]float64{4: 4000, 5: 4100})},
		reconcile.Solar:   {hourlyBlock(series.DirectionProduction, map[int]float64{4: 0})},
	}
	source.prodErr[reconcile.WindOnshore] = errors.New("entsoe: http 503")

	svc, repo := newTestService(t, source, reconcile.SignConventionLegacy)
	record, err := svc.RefreshProduction(context.Background(), "DE")
	if err != nil {
		t.Fatalf("refresh production: %v", err)
	}
	if record == nil {
		t.Fatalf("expected a record")
	}
	if want := dayStart.Add(4 * time.Hour); !record.Datetime.Equal(want) {
		t.Fatalf("expected %s, got %s", want, record.Datetime)
	}
	if record.Production.Solar == nil || *record.Production.Solar != 0 {
		t.Fatalf("expected reported zero solar, got %v", record.Production.Solar)
	}
	if record.Production.Wind != nil {
		t.Fatalf("expected wind absent, got %v", *record.Production.Wind)
	}

	stored, err := repo.LatestProduction(context.Background(), "DE")
	if err != nil {
		t.Fatalf("latest production: %v", err)
	}
	if !stored.Datetime.Equal(record.Datetime) {
		t.Fatalf("expected stored record at %s, got %s", record.Datetime, stored.Datetime)
	}
	if len(source.calls) != 20 {
		t.Fatalf("expected one query per category, got %d", len(source.calls))
	}
}

func TestFeederService_RefreshProductionNoData(t *testing.T) {
	svc, repo := newTestService(t, newStubSource(), "")
	record, err := svc.RefreshProduction(context.Background(), "DE")
	if err != nil || record != nil {
		t.Fatalf("expected no record and no error, got %+v (%v)", record, err)
	}
	if _, err := repo.LatestProduction(context.Background(), "DE"); !errors.Is(err, reconcile.ErrRecordNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

func TestFeederService_RefreshConsumption(t *testing.T) {
	source := newStubSource()
	source.consumption["NL"] = []series.Block{hourlyBlock(series.DirectionUnspecified, map[int]float64{4: 11000, 5: 11200, 6: 11400})}

	svc, repo := newTestService(t, source, "")
	record, err := svc.RefreshConsumption(context.Background(), "NL")
	if err != nil {
		t.Fatalf("refresh consumption: %v", err)
	}
	if record == nil || record.Consumption != 11200 || !record.Datetime.Equal(nowAt) {
		t.Fatalf("unexpected record %+v", record)
	}
	if _, err := repo.LatestConsumption(context.Background(), "NL"); err != nil {
		t.Fatalf("expected stored consumption: %v", err)
	}
	if _, err := svc.RefreshConsumption(context.Background(), ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestFeederService_RefreshExchange(t *testing.T) {
	source := newStubSource()
	source.exchange["FR-DE"] = []series.Block{hourlyBlock(series.DirectionUnspecified, map[int]float64{5: 100})}
	source.exchange["DE-FR"] = []series.Block{hourlyBlock(series.DirectionUnspecified, map[int]float64{5: 30})}

	svc, repo := newTestService(t, source, reconcile.SignConventionCanonical)
	record, err := svc.RefreshExchange(context.Background(), "FR", "DE")
	if err != nil {
		t.Fatalf("refresh exchange: %v", err)
	}
	if record == nil || record.SortedCountryCodes != "DE->FR" || record.NetFlow != -70 {
		t.Fatalf("unexpected record %+v", record)
	}
	if _, err := repo.LatestExchange(context.Background(), "DE->FR"); err != nil {
		t.Fatalf("expected stored exchange: %v", err)
	}
}

func TestFeederService_RefreshExchangeSkipsReverseWithoutForward(t *testing.T) {
	source := newStubSource()
	source.exchange["DE-FR"] = []series.Block{hourlyBlock(series.DirectionUnspecified, map[int]float64{5: 30})}

	svc, _ := newTestService(t, source, "")
	record, err := svc.RefreshExchange(context.Background(), "FR", "DE")
	if err != nil || record != nil {
		t.Fatalf("expected no record, got %+v (%v)", record, err)
	}
	if len(source.calls) != 1 || source.calls[0] != "exchange:FR-DE" {
		t.Fatalf("expected only the forward query, got %v", source.calls)
	}
}

func TestFeederService_RefreshExchangeErrors(t *testing.T) {
	source := newStubSource()
	source.exchangeErr = errors.New("entsoe: http 401")
	svc, _ := newTestService(t, source, "")

	if _, err := svc.RefreshExchange(context.Background(), "DE", "FR"); err == nil {
		t.Fatalf("expected upstream error")
	}
	if _, err := svc.RefreshExchange(context.Background(), "DE", "DE"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNewFeederService_Validates(t *testing.T) {
	if _, err := NewFeederService(nil, memory.NewRecordRepository(), nil, "", nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := NewFeederService(newStubSource(), nil, nil, "", nil); err == nil {
		t.Fatalf("expected error for nil repository")
	}
}
