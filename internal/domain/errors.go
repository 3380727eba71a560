// Package domain holds types and errors shared across feature modules.
package domain

import "errors"

// Sentinel errors for the failure kinds the API reports. Callers wrap
// them with context (fmt.Errorf("...: %w", ...)) and handlers map them
// to HTTP status codes with errors.Is.
var (
	// ErrNotFound signals a missing asset or wallet.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientData signals fewer than two price observations in
	// the requested window.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrEmptyWallet signals a wallet without holdings.
	ErrEmptyWallet = errors.New("wallet is empty")

	// ErrUpstream signals a failed fetch from the quote provider.
	ErrUpstream = errors.New("quote provider unavailable")

	// ErrConflict signals a uniqueness violation, such as adding an asset
	// a wallet already holds.
	ErrConflict = errors.New("already exists")

	// ErrInvalidInput signals a request that cannot be honored, such as
	// selling more shares than a position holds.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoComparableAssets signals a comparison in which every requested
	// ticker was skipped.
	ErrNoComparableAssets = errors.New("no tickers could be analyzed")
)
