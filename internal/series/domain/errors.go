package series

import "errors"

// ErrUnsupportedResolution is returned when a resolution code is not a PT{N}M minute code.
var ErrUnsupportedResolution = errors.New("series: unsupported resolution")
