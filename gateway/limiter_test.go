package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketLimiter_BurstPassesImmediately(t *testing.T) {
	l := NewTokenBucketLimiter(10, 3)
	start := time.Now()
	for i := 0; i < 3; i++ {
		l.Wait()
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTokenBucketLimiter_ThrottlesBeyondBurst(t *testing.T) {
	l := NewTokenBucketLimiter(20, 1)
	l.Wait() // consumes the burst token
	start := time.Now()
	l.Wait() // must wait ~50ms for a refill
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestTokenBucketLimiter_DefaultsOnBadArgs(t *testing.T) {
	l := NewTokenBucketLimiter(0, 0)
	l.Wait() // must not divide by zero or block forever
}
