package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teklifware/product_match_api/internal/matcher"
)

func TestBuildSearchText(t *testing.T) {
	in := ProductInput{
		ProductType: "Elektrofüzyon Dirsek",
		Diameter:    "63-50",
		ProductCode: "NTG EF 63-50",
		Description: "Kaynaklı bağlantı",
	}

	assert.Equal(t, "ntg ef 63-50 elektrofüzyon dirsek 63-50 kaynaklı bağlantı", buildSearchText(in))
}

func TestBuildSearchTextSkipsEmptyFields(t *testing.T) {
	in := ProductInput{
		ProductType: "Boru",
		ProductCode: "B-125",
		Diameter:    "  ",
	}

	assert.Equal(t, "b-125 boru", buildSearchText(in))
}

func TestFullTextQueryUsesStoredVector(t *testing.T) {
	// The turkish tsvector lives in the generated search_vector column;
	// stemming inline would sequential-scan the whole catalog
	assert.Contains(t, fullTextQuery, "search_vector @@ plainto_tsquery('turkish', $1)")
	assert.Contains(t, fullTextQuery, "ts_rank(search_vector")
	assert.NotContains(t, fullTextQuery, "to_tsvector")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(driver.ErrBadConn))
	assert.True(t, isTransient(&pq.Error{Code: "08006"}))  // connection_failure
	assert.False(t, isTransient(&pq.Error{Code: "42601"})) // syntax_error
	assert.False(t, isTransient(errors.New("plain error")))
	assert.False(t, isTransient(nil))
}

func TestSampleCacheServesSecondCallWithoutLoading(t *testing.T) {
	InvalidateSampleCache()
	t.Cleanup(InvalidateSampleCache)

	loads := 0
	loader := func(ctx context.Context, limit int) ([]matcher.CatalogProduct, error) {
		loads++
		return []matcher.CatalogProduct{{ID: "p1"}, {ID: "p2"}}, nil
	}

	first, err := getOrLoadSample(context.Background(), 10, loader)
	require.NoError(t, err)
	second, err := getOrLoadSample(context.Background(), 10, loader)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)
}

func TestSampleCacheReloadsForLargerLimit(t *testing.T) {
	InvalidateSampleCache()
	t.Cleanup(InvalidateSampleCache)

	loads := 0
	loader := func(ctx context.Context, limit int) ([]matcher.CatalogProduct, error) {
		loads++
		out := make([]matcher.CatalogProduct, limit)
		return out, nil
	}

	small, err := getOrLoadSample(context.Background(), 5, loader)
	require.NoError(t, err)
	assert.Len(t, small, 5)

	large, err := getOrLoadSample(context.Background(), 20, loader)
	require.NoError(t, err)
	assert.Len(t, large, 20)
	assert.Equal(t, 2, loads)

	// A smaller request is now served from the larger cached sample
	smaller, err := getOrLoadSample(context.Background(), 3, loader)
	require.NoError(t, err)
	assert.Len(t, smaller, 3)
	assert.Equal(t, 2, loads)
}

func TestSampleCacheExpires(t *testing.T) {
	InvalidateSampleCache()
	t.Cleanup(InvalidateSampleCache)

	loads := 0
	loader := func(ctx context.Context, limit int) ([]matcher.CatalogProduct, error) {
		loads++
		return []matcher.CatalogProduct{{ID: "p1"}}, nil
	}

	_, err := getOrLoadSample(context.Background(), 10, loader)
	require.NoError(t, err)

	// Age the cache past its TTL
	sampleMutex.Lock()
	currentSample.loadedAt = time.Now().Add(-CACHE_TTL - time.Second)
	sampleMutex.Unlock()

	_, err = getOrLoadSample(context.Background(), 10, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestBoundedCopyDoesNotAliasCache(t *testing.T) {
	cached := []matcher.CatalogProduct{{ID: "p1"}, {ID: "p2"}}

	out := boundedCopy(cached, 10)
	out[0].ID = "mutated"

	assert.Equal(t, "p1", cached[0].ID)
}
