package ratelimiting

import (
	"net/http"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockedRateLimiter struct {
	consumeFunc func(key string) bool
}

func (m *mockedRateLimiter) Consume(key string) bool {
	return m.consumeFunc(key)
}

func TestTokenBucketRateLimiter(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rateLimiter, stop := NewTokenBucketRateLimiter(1, 2)
		defer stop()

		assert.True(t, rateLimiter.Consume("display2"))

		// Burst of 2
		assert.True(t, rateLimiter.Consume("display1"))
		assert.True(t, rateLimiter.Consume("display1"))
		assert.False(t, rateLimiter.Consume("display1"))

		time.Sleep(1 * time.Second)

		// Refill rate of 1
		assert.True(t, rateLimiter.Consume("display1"))
		assert.False(t, rateLimiter.Consume("display1"))

		assert.True(t, rateLimiter.Consume("display2"))
		assert.True(t, rateLimiter.Consume("display2"))
		assert.False(t, rateLimiter.Consume("display2"))
	})
}

func TestIPKeyFunc(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ip: 127.0.0.1", IPKeyFunc(&http.Request{RemoteAddr: "127.0.0.1:51234"}))
	require.Equal(t, "ip: ::1", IPKeyFunc(&http.Request{RemoteAddr: "[::1]:51234"}))
	require.Equal(t, "ip: 127.0.0.1", IPKeyFunc(&http.Request{RemoteAddr: "127.0.0.1"}))
}

func TestRequestBasedRateLimiter(t *testing.T) {
	t.Parallel()

	var expectedKey string
	var allowed bool
	rateLimiter := &mockedRateLimiter{
		consumeFunc: func(key string) bool {
			t.Helper()
			assert.Equal(t, expectedKey, key)
			return allowed
		},
	}
	requestRateLimiter := NewRequestBasedRateLimiter(rateLimiter, IPKeyFunc)

	expectedKey = "ip: 1.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1:1000"}))
	allowed = false
	assert.False(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "1.1.1.1:1001"}))

	expectedKey = "ip: 2.1.1.1"
	allowed = true
	assert.True(t, requestRateLimiter.Consume(&http.Request{RemoteAddr: "2.1.1.1:1000"}))
}
