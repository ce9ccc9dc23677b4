package reconcile

import (
	"sort"
	"strings"
	"time"
)

// Source identifies the upstream data provider on every record.
const Source = "entsoe.eu"

// ConsumptionRecord is the latest total load of a country.
type ConsumptionRecord struct {
	CountryCode string    `json:"countryCode"`
	Datetime    time.Time `json:"datetime"`
	Consumption float64   `json:"consumption"`
	Source      string    `json:"source"`
}

// ProductionRecord is the most complete recent generation snapshot of a country.
type ProductionRecord struct {
	CountryCode string     `json:"countryCode"`
	Datetime    time.Time  `json:"datetime"`
	Production  Production `json:"production"`
	Source      string     `json:"source"`
}

// ExchangeRecord is the latest net cross-border flow of a country pair.
type ExchangeRecord struct {
	SortedCountryCodes string    `json:"sortedCountryCodes"`
	Datetime           time.Time `json:"datetime"`
	NetFlow            float64   `json:"netFlow"`
	Source             string    `json:"source"`
}

// PairKey joins two country codes in lexicographic order, e.g. "DE->FR".
func PairKey(a, b string) string {
	codes := SortedPair(a, b)
	return strings.Join(codes[:], "->")
}

// SortedPair returns the two codes in lexicographic order.
func SortedPair(a, b string) [2]string {
	codes := []string{a, b}
	sort.Strings(codes)
	return [2]string{codes[0], codes[1]}
}
