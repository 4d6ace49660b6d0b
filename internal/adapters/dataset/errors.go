package dataset

import "errors"

// Sentinel errors for dataset loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrMissingColumn     = errors.New("missing column")
	ErrEmptyFile         = errors.New("dataset file has no header row")
)
