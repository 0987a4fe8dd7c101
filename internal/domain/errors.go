package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrBadPrice    = errors.New("missing or non-positive price")
	ErrVenueStatus = errors.New("venue returned non-ok status")
)
