package reconcile

import (
	"fmt"
	"strings"

	series "entsoe-feeder/internal/series/domain"
)

// SignConvention decides how the net flow of a pair is signed.
type SignConvention string

const (
	// SignConventionLegacy negates every net flow. The feeder this service replaces
	// compared one character of a country code against the sorted pair, a test that
	// never holds, so consumers received the negated value for every pair.
	SignConventionLegacy SignConvention = "legacy"
	// SignConventionCanonical reports flow from the first to the second sorted code as
	// positive, negating only when the first argument is not the first sorted code.
	SignConventionCanonical SignConvention = "canonical"
)

// ParseSignConvention resolves a configured convention name. Empty means legacy.
func ParseSignConvention(value string) (SignConvention, error) {
	switch SignConvention(strings.ToLower(strings.TrimSpace(value))) {
	case "", SignConventionLegacy:
		return SignConventionLegacy, nil
	case SignConventionCanonical:
		return SignConventionCanonical, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSignConvention, value)
	}
}

// ExchangeReconciler merges both flow directions of a pair into one net flow.
type ExchangeReconciler struct {
	clock      Clock
	convention SignConvention
}

// NewExchangeReconciler constructs an ExchangeReconciler. An empty convention means legacy.
func NewExchangeReconciler(clock Clock, convention SignConvention) *ExchangeReconciler {
	if clock == nil {
		clock = SystemClock{}
	}
	if convention == "" {
		convention = SignConventionLegacy
	}
	return &ExchangeReconciler{clock: clock, convention: convention}
}

// Convention returns the configured sign convention.
func (r *ExchangeReconciler) Convention() SignConvention { return r.convention }

// Reconcile folds aToB positively and bToA negatively, then picks the most recent
// non-future timestamp. bToA is only folded when aToB produced points.
func (r *ExchangeReconciler) Reconcile(a, b string, aToB, bToA []series.Block) (ExchangeRecord, bool) {
	acc := foldUsable(nil, aToB, series.SignImport)
	if len(acc) == 0 {
		return ExchangeRecord{}, false
	}
	acc = foldUsable(acc, bToA, series.SignExport)

	point, ok := acc.LatestAt(r.clock.Now())
	if !ok {
		return ExchangeRecord{}, false
	}
	return ExchangeRecord{
		SortedCountryCodes: PairKey(a, b),
		Datetime:           point.At,
		NetFlow:            r.sign(a, b, point.Quantity),
		Source:             Source,
	}, true
}

func (r *ExchangeReconciler) sign(a, b string, netFlow float64) float64 {
	if r.convention == SignConventionCanonical && a == SortedPair(a, b)[0] {
		return netFlow
	}
	return -netFlow
}
