package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound    = errors.New("player data not found")
	ErrEmptyPlayer = errors.New("player name is required")
)
