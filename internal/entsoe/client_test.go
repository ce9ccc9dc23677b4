package entsoe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	now := time.Date(2026, time.January, 20, 10, 17, 0, 0, time.UTC)
	client, err := NewClient(server.URL, "token-1", WithRatePerMinute(0), WithNow(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClient_QueryProductionParams(t *testing.T) {
	queries := make(chan url.Values, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(generationDocument))
	})

	blocks, err := client.QueryProduction(context.Background(), "B10", "10YAT-APG------L")
	if err != nil {
		t.Fatalf("query production: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	q := <-queries
	checks := map[string]string{
		"documentType":  "A75",
		"processType":   "A16",
		"psrType":       "B10",
		"in_Domain":     "10YAT-APG------L",
		"securityToken": "token-1",
		"periodStart":   "202601191000",
		"periodEnd":     "202601211000",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Fatalf("expected %s=%s, got %s", key, want, got)
		}
	}
}

func TestClient_QueryExchangeParams(t *testing.T) {
	queries := make(chan url.Values, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		_, _ = w.Write([]byte(`<Publication_MarketDocument></Publication_MarketDocument>`))
	})

	if _, err := client.QueryExchange(context.Background(), "10Y1001A1001A83F", "10YFR-RTE------C"); err != nil {
		t.Fatalf("query exchange: %v", err)
	}
	q := <-queries
	if q.Get("documentType") != "A11" || q.Get("in_Domain") != "10Y1001A1001A83F" || q.Get("out_Domain") != "10YFR-RTE------C" {
		t.Fatalf("unexpected exchange query %v", q)
	}
}

func TestClient_QueryConsumptionParams(t *testing.T) {
	queries := make(chan url.Values, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		_, _ = w.Write([]byte(`<GL_MarketDocument></GL_MarketDocument>`))
	})

	if _, err := client.QueryConsumption(context.Background(), "10YNL----------L"); err != nil {
		t.Fatalf("query consumption: %v", err)
	}
	q := <-queries
	if q.Get("documentType") != "A65" || q.Get("outBiddingZone_Domain") != "10YNL----------L" {
		t.Fatalf("unexpected consumption query %v", q)
	}
}

func TestClient_UpstreamErrorCarriesReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(acknowledgementDocument))
	})

	_, err := client.QueryConsumption(context.Background(), "10YNL----------L")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T", err)
	}
	if upstream.StatusCode != http.StatusBadRequest || upstream.Reason == "" {
		t.Fatalf("unexpected upstream error %+v", upstream)
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
	client, err := NewClient("", "token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.endpoint != DefaultEndpoint {
		t.Fatalf("expected default endpoint, got %s", client.endpoint)
	}
}
