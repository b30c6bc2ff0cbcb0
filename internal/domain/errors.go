package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUpstreamFetch = errors.New("upstream catalog fetch failed")
	ErrScanInFlight  = errors.New("scan pass already in flight")
	ErrStaleResult   = errors.New("scan result superseded")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
)
