package repository

import (
	"context"
	"errors"
)

var (
	ErrPageNotFound      = errors.New("page not found")
	ErrContentRestricted = errors.New("content is restricted or requires authentication")
	ErrFetchTimeout      = errors.New("page fetch timed out")
	ErrNavigationFailed  = errors.New("page navigation failed")
)

// PageFetcher retrieves the raw HTML of a page. Implementations must be safe
// for concurrent use.
type PageFetcher interface {
	// Fetch returns the HTML text served at address.
	Fetch(ctx context.Context, address string) (string, error)
}
