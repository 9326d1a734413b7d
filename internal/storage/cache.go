// cache.go - In-memory cache for the oracle candidate sample

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/teklifware/product_match_api/internal/matcher"
)

// sampleCache stores the bounded catalog sample served to the oracle
type sampleCache struct {
	products []matcher.CatalogProduct
	limit    int
	loadedAt time.Time
}

var currentSample *sampleCache
var sampleMutex sync.RWMutex

const CACHE_TTL = 5 * time.Minute // Cache expires after 5 minutes

type sampleLoader func(ctx context.Context, limit int) ([]matcher.CatalogProduct, error)

// getOrLoadSample retrieves the catalog sample from cache or loads it fresh.
// A cached sample loaded with a smaller limit is treated as expired.
func getOrLoadSample(ctx context.Context, limit int, load sampleLoader) ([]matcher.CatalogProduct, error) {
	sampleMutex.RLock()
	cache := currentSample
	sampleMutex.RUnlock()

	if cache != nil && cache.limit >= limit && time.Since(cache.loadedAt) < CACHE_TTL {
		return boundedCopy(cache.products, limit), nil
	}

	// Cache expired or doesn't exist - load from DB
	sampleMutex.Lock()
	defer sampleMutex.Unlock()

	// Double-check after acquiring write lock
	cache = currentSample
	if cache != nil && cache.limit >= limit && time.Since(cache.loadedAt) < CACHE_TTL {
		return boundedCopy(cache.products, limit), nil
	}

	products, err := load(ctx, limit)
	if err != nil {
		return nil, err
	}

	currentSample = &sampleCache{
		products: products,
		limit:    limit,
		loadedAt: time.Now(),
	}
	return boundedCopy(products, limit), nil
}

// boundedCopy returns at most limit products in a fresh slice so callers
// cannot mutate the cached backing array
func boundedCopy(products []matcher.CatalogProduct, limit int) []matcher.CatalogProduct {
	if len(products) > limit {
		products = products[:limit]
	}
	out := make([]matcher.CatalogProduct, len(products))
	copy(out, products)
	return out
}

// InvalidateSampleCache removes the cached catalog sample. Called after
// catalog writes so the oracle pool reflects imports without waiting out
// the TTL.
func InvalidateSampleCache() {
	sampleMutex.Lock()
	defer sampleMutex.Unlock()
	currentSample = nil
}
