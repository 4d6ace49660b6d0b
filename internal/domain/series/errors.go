package series

import "errors"

// Sentinel kinds for series errors.
var (
	ErrUnsupportedGranularity = errors.New("unsupported granularity")
	ErrUnknownValuePolicy     = errors.New("unknown value policy")
)
