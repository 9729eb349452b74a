package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSMTP = errors.New("smtp: connection reset")

func newTestBreaker(now *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Nombre:           "test",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	})
	cb.now = func() time.Time { return *now }
	return cb
}

func fallar() error { return errSMTP }
func exito() error  { return nil }

func TestCircuitBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fallar), errSMTP)
	}
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado, "fn is not called while open")
}

func TestCircuitBreaker_ExitoReiniciaConteo(t *testing.T) {
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)

	_ = cb.Execute(fallar)
	_ = cb.Execute(fallar)
	require.NoError(t, cb.Execute(exito))
	_ = cb.Execute(fallar)
	_ = cb.Execute(fallar)

	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_SemiAbiertoCierraConExitos(t *testing.T) {
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(fallar)
	}

	now = now.Add(31 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(exito))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(exito))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_SemiAbiertoReabreConFallo(t *testing.T) {
	now := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	cb := newTestBreaker(&now)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(fallar)
	}
	now = now.Add(31 * time.Second)

	assert.ErrorIs(t, cb.Execute(fallar), errSMTP)
	assert.Equal(t, CBOpen, cb.State())

	now = now.Add(10 * time.Second)
	assert.ErrorIs(t, cb.Execute(exito), ErrCircuitOpen, "the open timeout restarts on reopen")
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
	assert.Equal(t, "unknown", CBState(9).String())
}
