package entsoe

import (
	"context"
	"errors"

	entsoeapi "entsoe-feeder/internal/entsoe"
	reconcile "entsoe-feeder/internal/reconcile/domain"
	series "entsoe-feeder/internal/series/domain"
)

// Querier is the subset of the ENTSO-E client used by the feeder.
type Querier interface {
	QueryConsumption(ctx context.Context, domain string) ([]series.Block, error)
	QueryProduction(ctx context.Context, psrType, domain string) ([]series.Block, error)
	QueryExchange(ctx context.Context, inDomain, outDomain string) ([]series.Block, error)
}

// Source resolves country codes to ENTSO-E domains and queries the client.
type Source struct {
	client Querier
}

// NewSource constructs a Source.
func NewSource(client Querier) (*Source, error) {
	if client == nil {
		return nil, errors.New("entsoe source: nil client")
	}
	return &Source{client: client}, nil
}

// Consumption fetches actual total load of a country.
func (s *Source) Consumption(ctx context.Context, countryCode string) ([]series.Block, error) {
	domain, err := entsoeapi.Domain(countryCode)
	if err != nil {
		return nil, err
	}
	return s.client.QueryConsumption(ctx, domain)
}

// Production fetches actual generation of one category for a country.
func (s *Source) Production(ctx context.Context, countryCode string, category reconcile.Category) ([]series.Block, error) {
	domain, err := entsoeapi.Domain(countryCode)
	if err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, reconcile.ErrUnknownCategory
	}
	return s.client.QueryProduction(ctx, category.Code(), domain)
}

// Exchange fetches the physical flow series queried with in=from and out=to.
func (s *Source) Exchange(ctx context.Context, fromCountry, toCountry string) ([]series.Block, error) {
	inDomain, err := entsoeapi.Domain(fromCountry)
	if err != nil {
		return nil, err
	}
	outDomain, err := entsoeapi.Domain(toCountry)
	if err != nil {
		return nil, err
	}
	return s.client.QueryExchange(ctx, inDomain, outDomain)
}
