package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	t.Run("disabled when per minute is zero", func(t *testing.T) {
		l := NewIPRateLimiter(0)
		for i := 0; i < 1000; i++ {
			assert.True(t, l.Allow("1.2.3.4"))
		}
		assert.Equal(t, 0, l.Len())
	})

	t.Run("burst equals per minute budget", func(t *testing.T) {
		l := NewIPRateLimiter(3)
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))

		now = now.Add(20 * time.Second)
		assert.True(t, l.Allow("a"), "one token refills every 20s")
	})

	t.Run("prunes idle visitors", func(t *testing.T) {
		l := NewIPRateLimiter(10)
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }
		l.lastPrune = now

		l.Allow("a")
		l.Allow("b")
		assert.Equal(t, 2, l.Len())

		now = now.Add(visitorIdleTimeout + time.Minute)
		l.Allow("c")
		assert.Equal(t, 1, l.Len())
	})
}
