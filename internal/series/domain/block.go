package series

import "time"

// Direction tells whether a block reports energy leaving or entering the bidding zone.
type Direction int

const (
	// DirectionUnspecified is used for documents without a direction concept (load, exchange).
	DirectionUnspecified Direction = iota
	// DirectionProduction marks generation delivered into the zone.
	DirectionProduction
	// DirectionConsumption marks storage charging reported under a generation category.
	DirectionConsumption
)

// String returns a stable label for logs.
func (d Direction) String() string {
	switch d {
	case DirectionProduction:
		return "production"
	case DirectionConsumption:
		return "consumption"
	default:
		return "unspecified"
	}
}

// Entry is one (position, quantity) pair as published upstream.
type Entry struct {
	Position int
	Quantity float64
}

// Block is one upstream run of points sharing a start time and resolution.
type Block struct {
	Resolution string
	Start      time.Time
	Entries    []Entry
	Direction  Direction
}

// TimePoint is a quantity at an absolute timestamp.
type TimePoint struct {
	At       time.Time
	Quantity float64
}

// Points expands every entry of the block into absolute time points.
func (b Block) Points() ([]TimePoint, error) {
	if _, err := ParseResolution(b.Resolution); err != nil {
		return nil, err
	}
	points := make([]TimePoint, 0, len(b.Entries))
	for _, entry := range b.Entries {
		at, err := Expand(b.Start, entry.Position, b.Resolution)
		if err != nil {
			return nil, err
		}
		points = append(points, TimePoint{At: at, Quantity: entry.Quantity})
	}
	return points, nil
}
