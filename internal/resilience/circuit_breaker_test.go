package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Minute,
	})

	failing := func() error { return errors.New("boom") }

	require.Error(t, cb.Call(failing))
	assert.Equal(t, StateClosed, cb.State())

	require.Error(t, cb.Call(failing))
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Call(func() error { return nil })
	var cbErr *CircuitBreakerError
	require.ErrorAs(t, err, &cbErr)
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Millisecond,
		SuccessThreshold: 1,
	})

	require.Error(t, cb.Call(func() error { return errors.New("boom") }))
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)

	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})

	_ = cb.Call(func() error { return errors.New("boom") })
	require.NoError(t, cb.Call(func() error { return nil }))

	assert.Equal(t, 0, cb.Failures())
	assert.Equal(t, StateClosed, cb.State())
}

func TestRegistryGetOrCreate(t *testing.T) {
	reg := NewCircuitBreakerRegistry()

	a := reg.GetOrCreate("github", CircuitBreakerConfig{})
	b := reg.GetOrCreate("github", CircuitBreakerConfig{})

	assert.Same(t, a, b)

	stats := reg.GetStats()
	assert.Contains(t, stats, "github")
}
