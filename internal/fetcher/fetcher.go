package fetcher

import "context"

// Fetcher downloads remote documents with per-host rate limiting and retry.
type Fetcher interface {
	// Get fetches the URL and returns the response body.
	Get(ctx context.Context, url string) ([]byte, error)

	// GetJSON fetches the URL with a JSON accept header and decodes the
	// response body into out.
	GetJSON(ctx context.Context, url string, out any) error
}
