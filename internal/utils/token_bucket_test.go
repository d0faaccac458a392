package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllowN(t *testing.T) {
	t.Run("starts full", func(t *testing.T) {
		tb := NewTokenBucket(5, 1)
		for range 5 {
			assert.True(t, tb.AllowN(1))
		}
		assert.False(t, tb.AllowN(1))
	})

	t.Run("refills over time", func(t *testing.T) {
		tb := NewTokenBucket(2, 100)
		assert.True(t, tb.AllowN(2))
		assert.False(t, tb.AllowN(1))

		time.Sleep(50 * time.Millisecond)
		assert.True(t, tb.AllowN(1))
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		tb := NewTokenBucket(3, 1000)
		time.Sleep(20 * time.Millisecond)
		assert.True(t, tb.AllowN(3))
		assert.False(t, tb.AllowN(1))
	})
}

func TestTokenBucketWaitN(t *testing.T) {
	t.Run("waits for refill", func(t *testing.T) {
		tb := NewTokenBucket(1, 100)
		assert.True(t, tb.AllowN(1))

		start := time.Now()
		ok := tb.WaitN(1, 500*time.Millisecond)
		assert.True(t, ok)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("times out when rate is zero", func(t *testing.T) {
		tb := NewTokenBucket(1, 0)
		assert.True(t, tb.AllowN(1))
		assert.False(t, tb.WaitN(1, 30*time.Millisecond))
	})
}
