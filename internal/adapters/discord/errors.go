package discord

import "errors"

// Sentinel kinds for gateway adapter errors.
var (
	ErrSession = errors.New("gateway session failed")
)
