package reconcile

// oilSentinel is what upstream publishes for oil when it has no measurement.
const oilSentinel = -1.0

// Production is the fuel-group breakdown of one snapshot. A nil field means no
// constituent category was reported, which is distinct from a reported zero.
type Production struct {
	Biomass *float64 `json:"biomass"`
	Coal    *float64 `json:"coal"`
	Gas     *float64 `json:"gas"`
	Hydro   *float64 `json:"hydro"`
	Nuclear *float64 `json:"nuclear"`
	Oil     *float64 `json:"oil"`
	Solar   *float64 `json:"solar"`
	Wind    *float64 `json:"wind"`
	Unknown *float64 `json:"unknown"`
}

// FuelGroup names a canonical generation group.
type FuelGroup string

const (
	FuelBiomass FuelGroup = "biomass"
	FuelCoal    FuelGroup = "coal"
	FuelGas     FuelGroup = "gas"
	FuelHydro   FuelGroup = "hydro"
	FuelNuclear FuelGroup = "nuclear"
	FuelOil     FuelGroup = "oil"
	FuelSolar   FuelGroup = "solar"
	FuelWind    FuelGroup = "wind"
	FuelUnknown FuelGroup = "unknown"
)

// FuelGroups lists the groups in output order.
func FuelGroups() []FuelGroup {
	return []FuelGroup{FuelBiomass, FuelCoal, FuelGas, FuelHydro, FuelNuclear, FuelOil, FuelSolar, FuelWind, FuelUnknown}
}

// Value returns the quantity of a group, nil when absent.
func (p Production) Value(group FuelGroup) *float64 {
	switch group {
	case FuelBiomass:
		return p.Biomass
	case FuelCoal:
		return p.Coal
	case FuelGas:
		return p.Gas
	case FuelHydro:
		return p.Hydro
	case FuelNuclear:
		return p.Nuclear
	case FuelOil:
		return p.Oil
	case FuelSolar:
		return p.Solar
	case FuelWind:
		return p.Wind
	case FuelUnknown:
		return p.Unknown
	default:
		return nil
	}
}

// Rollup collapses one row of raw categories into fuel groups.
func Rollup(row CategoryRow) Production {
	return Production{
		Biomass: sumPresent(row, Biomass, FossilPeat, Waste),
		Coal:    sumPresent(row, FossilBrownCoalLignite, FossilHardCoal),
		Gas:     sumPresent(row, FossilCoalDerivedGas, FossilGas),
		Hydro:   hydro(row),
		Nuclear: sumPresent(row, Nuclear),
		Oil:     oil(row),
		Solar:   sumPresent(row, Solar),
		Wind:    sumPresent(row, WindOnshore, WindOffshore),
		Unknown: sumPresent(row, Geothermal, Marine, OtherRenewable, Other),
	}
}

func sumPresent(row CategoryRow, categories ...Category) *float64 {
	var (
		total float64
		found bool
	)
	for _, c := range categories {
		if value, ok := row.Get(c); ok {
			total += value
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}

// hydro clamps net pumping to zero instead of subtracting it.
func hydro(row CategoryRow) *float64 {
	total := sumPresent(row, HydroPumpedStorage, HydroRunOfRiver, HydroWaterReservoir)
	if total == nil {
		return nil
	}
	if pumped, ok := row.Get(HydroPumpedStorage); ok && pumped < 0 {
		*total -= pumped
	}
	return total
}

func oil(row CategoryRow) *float64 {
	total := sumPresent(row, FossilOil, FossilOilShale)
	if total == nil || *total == oilSentinel {
		return nil
	}
	return total
}
