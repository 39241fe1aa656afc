package persistence

import "errors"

// ErrNotConfigured is returned by Ping when a store has no address.
var ErrNotConfigured = errors.New("store not configured")
