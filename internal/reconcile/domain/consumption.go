package reconcile

import series "entsoe-feeder/internal/series/domain"

// ConsumptionReducer selects the latest non-future total load point.
type ConsumptionReducer struct {
	clock Clock
}

// NewConsumptionReducer constructs a ConsumptionReducer.
func NewConsumptionReducer(clock Clock) *ConsumptionReducer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ConsumptionReducer{clock: clock}
}

// Reduce folds the load blocks and returns the latest point not after now.
// Blocks with an unsupported resolution are ignored.
func (r *ConsumptionReducer) Reduce(countryCode string, blocks []series.Block) (ConsumptionRecord, bool) {
	acc := foldUsable(nil, blocks, series.SignImport)
	point, ok := acc.LatestAt(r.clock.Now())
	if !ok {
		return ConsumptionRecord{}, false
	}
	return ConsumptionRecord{
		CountryCode: countryCode,
		Datetime:    point.At,
		Consumption: point.Quantity,
		Source:      Source,
	}, true
}

// foldUsable folds each block on its own so a malformed block only drops its own points.
func foldUsable(acc series.Accumulator, blocks []series.Block, sign series.Sign) series.Accumulator {
	if acc == nil {
		acc = make(series.Accumulator)
	}
	for _, block := range blocks {
		points, err := block.Points()
		if err != nil {
			continue
		}
		acc = series.Merge(acc, points, sign)
	}
	return acc
}

