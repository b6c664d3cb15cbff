package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalLimiter_Burst(t *testing.T) {
	l := NewLocalLimiter(0.001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("emp"), "attempt %d", i)
	}
	assert.False(t, l.Allow("emp"))
}

func TestLocalLimiter_KeysAreIsolated(t *testing.T) {
	l := NewLocalLimiter(0.001, 1)

	assert.True(t, l.Allow("emp"))
	assert.False(t, l.Allow("emp"))
	assert.True(t, l.Allow("boss"))
}

func TestLocalLimiter_DisabledAndNil(t *testing.T) {
	var nilLimiter *LocalLimiter
	assert.True(t, nilLimiter.Allow("emp"))

	l := NewLocalLimiter(0, 1)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("emp"))
	}
}

func TestLocalLimiter_Cleanup(t *testing.T) {
	l := NewLocalLimiter(0.001, 1)
	l.Allow("stale")
	l.Allow("fresh")

	l.mu.Lock()
	l.limiters["stale"].lastSeen = time.Now().Add(-time.Hour)
	l.mu.Unlock()

	l.Cleanup()

	l.mu.Lock()
	_, staleKept := l.limiters["stale"]
	_, freshKept := l.limiters["fresh"]
	l.mu.Unlock()
	assert.False(t, staleKept)
	assert.True(t, freshKept)

	// удалённый ключ получает новый bucket
	assert.True(t, l.Allow("stale"))
}

func TestRedisLimiter_NilClient(t *testing.T) {
	l := NewRedisLimiter(nil, 5, time.Second, "jobboard")
	assert.Nil(t, l)
	assert.True(t, l.Allow("emp"))
}
