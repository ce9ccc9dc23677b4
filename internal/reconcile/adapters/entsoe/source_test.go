package entsoe

import (
	"context"
	"errors"
	"testing"

	entsoeapi "entsoe-feeder/internal/entsoe"
	reconcile "entsoe-feeder/internal/reconcile/domain"
	series "entsoe-feeder/internal/series/domain"
)

type recordingQuerier struct {
	calls []string
}

func (q *recordingQuerier) QueryConsumption(_ context.Context, domain string) ([]series.Block, error) {
	q.calls = append(q.calls, "load:"+domain)
	return nil, nil
}

func (q *recordingQuerier) QueryProduction(_ context.Context, psrType, domain string) ([]series.Block, error) {
	q.calls = append(q.calls, "gen:"+psrType+":"+domain)
	return nil, nil
}

func (q *recordingQuerier) QueryExchange(_ context.Context, inDomain, outDomain string) ([]series.Block, error) {
	q.calls = append(q.calls, "flow:"+inDomain+":"+outDomain)
	return nil, nil
}

func TestSource_ResolvesDomains(t *testing.T) {
	querier := &recordingQuerier{}
	source, err := NewSource(querier)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	ctx := context.Background()

	if _, err := source.Consumption(ctx, "NL"); err != nil {
		t.Fatalf("consumption: %v", err)
	}
	if _, err := source.Production(ctx, "AT", reconcile.HydroPumpedStorage); err != nil {
		t.Fatalf("production: %v", err)
	}
	if _, err := source.Exchange(ctx, "DE", "FR"); err != nil {
		t.Fatalf("exchange: %v", err)
	}

	want := []string{
		"load:10YNL----------L",
		"gen:B10:10YAT-APG------L",
		"flow:10Y1001A1001A83F:10YFR-RTE------C",
	}
	if len(querier.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), querier.calls)
	}
	for i := range want {
		if querier.calls[i] != want[i] {
			t.Fatalf("expected call %q, got %q", want[i], querier.calls[i])
		}
	}
}

func TestSource_UnknownCountry(t *testing.T) {
	source, _ := NewSource(&recordingQuerier{})
	if _, err := source.Exchange(context.Background(), "DE", "UA"); !errors.Is(err, entsoeapi.ErrUnknownCountry) {
		t.Fatalf("expected ErrUnknownCountry, got %v", err)
	}
	if _, err := source.Production(context.Background(), "DE", reconcile.Category(99)); !errors.Is(err, reconcile.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}
