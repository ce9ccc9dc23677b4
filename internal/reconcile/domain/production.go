package reconcile

import series "entsoe-feeder/internal/series/domain"

// CategoryFailure reports a category that was left out of a snapshot.
type CategoryFailure struct {
	Category Category
	Err      error
}

// ProductionBuilder selects the most complete recent generation snapshot for a country.
type ProductionBuilder struct {
	clock Clock
}

// NewProductionBuilder constructs a ProductionBuilder.
func NewProductionBuilder(clock Clock) *ProductionBuilder {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ProductionBuilder{clock: clock}
}

// Build reconciles per-category blocks into one record. It reports false when no
// non-future timestamp exists. Categories with unusable blocks are skipped and returned
// as failures; they never prevent selection from the remaining categories.
func (b *ProductionBuilder) Build(countryCode string, perCategory map[Category][]series.Block) (ProductionRecord, bool, []CategoryFailure) {
	table, failures := BuildCategoryTable(perCategory)

	at, row, ok := table.Select(b.clock.Now())
	if !ok {
		return ProductionRecord{}, false, failures
	}
	return ProductionRecord{
		CountryCode: countryCode,
		Datetime:    at,
		Production:  Rollup(row),
		Source:      Source,
	}, true, failures
}

// BuildCategoryTable folds each category's blocks and writes them into a fresh table.
// Storage-charging blocks are folded negatively into their category.
func BuildCategoryTable(perCategory map[Category][]series.Block) (CategoryTable, []CategoryFailure) {
	table := make(CategoryTable)
	var failures []CategoryFailure
	for _, c := range Categories() {
		blocks, ok := perCategory[c]
		if !ok || len(blocks) == 0 {
			continue
		}
		acc, err := series.MergeBlocks(nil, blocks, productionSign)
		if err != nil {
			failures = append(failures, CategoryFailure{Category: c, Err: err})
			continue
		}
		table.Put(c, acc)
	}
	return table, failures
}

func productionSign(block series.Block) series.Sign {
	if block.Direction == series.DirectionConsumption {
		return series.SignExport
	}
	return series.SignImport
}
