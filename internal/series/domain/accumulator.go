package series

import (
	"sort"
	"time"
)

// Sign scales quantities folded into an accumulator.
type Sign int

const (
	// SignImport keeps quantities as reported.
	SignImport Sign = 1
	// SignExport negates quantities.
	SignExport Sign = -1
)

// Accumulator maps a timestamp to the signed sum of every point folded at it.
// Keys are UTC instants without a monotonic reading.
type Accumulator map[time.Time]float64

// Merge folds points into acc, scaled by sign, and returns the accumulator.
// A nil acc is allocated. Points that share a timestamp are summed, never overwritten.
func Merge(acc Accumulator, points []TimePoint, sign Sign) Accumulator {
	if acc == nil {
		acc = make(Accumulator, len(points))
	}
	for _, point := range points {
		acc[point.At.UTC()] += float64(sign) * point.Quantity
	}
	return acc
}

// MergeBlocks expands and folds every block with the sign chosen by signFor.
// Nothing is folded when any block carries an unsupported resolution.
func MergeBlocks(acc Accumulator, blocks []Block, signFor func(Block) Sign) (Accumulator, error) {
	expanded := make([][]TimePoint, len(blocks))
	for i, block := range blocks {
		points, err := block.Points()
		if err != nil {
			return acc, err
		}
		expanded[i] = points
	}
	if acc == nil {
		acc = make(Accumulator)
	}
	for i, points := range expanded {
		sign := SignImport
		if signFor != nil {
			sign = signFor(blocks[i])
		}
		acc = Merge(acc, points, sign)
	}
	return acc, nil
}

// Timestamps returns the keys sorted most recent first.
func (a Accumulator) Timestamps() []time.Time {
	keys := make([]time.Time, 0, len(a))
	for at := range a {
		keys = append(keys, at)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].After(keys[j]) })
	return keys
}

// LatestAt returns the most recent point that is not after now.
func (a Accumulator) LatestAt(now time.Time) (TimePoint, bool) {
	var (
		best  time.Time
		found bool
	)
	for at := range a {
		if at.After(now) {
			continue
		}
		if !found || at.After(best) {
			best = at
			found = true
		}
	}
	if !found {
		return TimePoint{}, false
	}
	return TimePoint{At: best, Quantity: a[best]}, true
}
