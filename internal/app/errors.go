package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoData       = errors.New("data not available for player")
	ErrNotScheduled = errors.New("date not scheduled")
)
