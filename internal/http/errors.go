package httpx

import "errors"

// Client-facing errors. Provider failure details stay in the logs.
var (
	errAuthRequired        = errors.New("authentication required")
	errNotFound            = errors.New("not found")
	errUnknownRoute        = errors.New("unknown shell route")
	errProviderUnavailable = errors.New("session provider unavailable")
)
