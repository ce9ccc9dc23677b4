package series

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var minuteResolution = regexp.MustCompile(`^PT(\d+)M$`)

// ParseResolution converts a PT{N}M resolution code into the spacing between points.
func ParseResolution(code string) (time.Duration, error) {
	m := minuteResolution.FindStringSubmatch(code)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedResolution, code)
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedResolution, code)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// Expand derives the timestamp of the point at position within a series starting at start.
//
// Position is the upstream 1-based index and is multiplied as-is, so position 1 lands one
// full interval after start. Published snapshots depend on this offset; keep it.
func Expand(start time.Time, position int, code string) (time.Time, error) {
	step, err := ParseResolution(code)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(position) * step).UTC(), nil
}
