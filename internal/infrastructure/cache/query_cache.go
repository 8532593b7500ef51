package cache

import (
	"context"
	"time"
)

// Cache keys for the derived read-model values that are expensive to
// recompute on every request. Invoice writes invalidate all of them.
const (
	KeyInvoiceCounts    = "query:invoice_counts"
	KeyInvoiceYears     = "query:invoice_years"
	KeyClientCountries  = "query:client_countries"
	KeyInvoiceDueCounts = "query:invoice_due_counts"
)

// QueryCache stores serialized query results with a TTL.
// Implementations must treat a missing key as a cache miss, not an error.
type QueryCache interface {
	// Get returns the cached payload for key, or found=false on a miss
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set stores a payload under key for the given TTL
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Invalidate removes the given keys
	Invalidate(ctx context.Context, keys ...string) error

	// Close releases any resources held by the cache
	Close() error
}
