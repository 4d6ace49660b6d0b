package timebucket

import "errors"

// Sentinel kinds for date bucketing errors.
var (
	ErrInvalidDate = errors.New("invalid date")
)
