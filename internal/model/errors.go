package model

import "errors"

var (
	// ErrStoreUnavailable means the persisted history could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrProviderUnavailable means the market-data fetch failed.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidBaseline means the percent-change baseline is zero or missing.
	ErrInvalidBaseline = errors.New("invalid percent-change baseline")
	// ErrNegativePrice means a closing price below zero was offered for storage.
	ErrNegativePrice = errors.New("negative price")
	// ErrEmptyWindow means the display filter matched no rows.
	ErrEmptyWindow = errors.New("no data in window")
)
