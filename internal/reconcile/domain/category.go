package reconcile

import "fmt"

// Category is an ENTSO-E psrType generation category.
type Category int

const (
	Biomass Category = iota
	FossilBrownCoalLignite
	FossilCoalDerivedGas
	FossilGas
	FossilHardCoal
	FossilOil
	FossilOilShale
	FossilPeat
	Geothermal
	HydroPumpedStorage
	HydroRunOfRiver
	HydroWaterReservoir
	Marine
	Nuclear
	OtherRenewable
	Solar
	Waste
	WindOffshore
	WindOnshore
	Other

	categoryCount
)

var categoryCodes = [categoryCount]string{
	"B01", "B02", "B03", "B04", "B05", "B06", "B07", "B08", "B09", "B10",
	"B11", "B12", "B13", "B14", "B15", "B16", "B17", "B18", "B19", "B20",
}

var categoryLabels = [categoryCount]string{
	"Biomass",
	"Fossil Brown coal/Lignite",
	"Fossil Coal-derived gas",
	"Fossil Gas",
	"Fossil Hard coal",
	"Fossil Oil",
	"Fossil Oil shale",
	"Fossil Peat",
	"Geothermal",
	"Hydro Pumped Storage",
	"Hydro Run-of-river and poundage",
	"Hydro Water Reservoir",
	"Marine",
	"Nuclear",
	"Other renewable",
	"Solar",
	"Waste",
	"Wind Offshore",
	"Wind Onshore",
	"Other",
}

// Categories returns every known category in psrType order.
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory resolves a psrType code such as "B16".
func ParseCategory(code string) (Category, error) {
	for i, c := range categoryCodes {
		if c == code {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, code)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c >= 0 && c < categoryCount }

// Code returns the psrType code.
func (c Category) Code() string {
	if !c.Valid() {
		return ""
	}
	return categoryCodes[c]
}

// Label returns the human-readable upstream label.
func (c Category) Label() string {
	if !c.Valid() {
		return ""
	}
	return categoryLabels[c]
}

// String returns the psrType code.
func (c Category) String() string { return c.Code() }
