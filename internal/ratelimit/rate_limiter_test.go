package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitConsumesTokensWithoutBlocking(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	start := time.Now()
	rl.Wait()
	rl.Wait()
	rl.Wait()

	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 0, rl.tokens)
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	rl := NewRateLimiter(1, 200*time.Millisecond)

	rl.Wait()

	start := time.Now()
	rl.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestRefillNeverExceedsMax(t *testing.T) {
	rl := NewRateLimiter(2, 10*time.Millisecond)
	rl.lastRefillTime = time.Now().Add(-time.Second)

	rl.Wait()
	assert.Equal(t, 1, rl.tokens)
}
