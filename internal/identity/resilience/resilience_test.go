package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"useridentity/internal/identity/resilience"
)

var errBackend = errors.New("backend down")

func fastRetry(attempts int) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestCircuitBreaker(t *testing.T) {
	ctx := context.Background()
	cfg := resilience.CircuitBreakerConfig{ErrorThreshold: 2, Timeout: 20 * time.Millisecond, SuccessThreshold: 1}

	t.Run("размыкается после порога ошибок", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("test", cfg)

		assert.ErrorIs(t, cb.Execute(ctx, func() error { return errBackend }), errBackend)
		assert.Equal(t, resilience.StateClosed, cb.GetState())
		assert.ErrorIs(t, cb.Execute(ctx, func() error { return errBackend }), errBackend)
		assert.Equal(t, resilience.StateOpen, cb.GetState())

		called := false
		err := cb.Execute(ctx, func() error { called = true; return nil })
		assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
		assert.False(t, called)
	})

	t.Run("успех сбрасывает счетчик ошибок", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("test", cfg)

		_ = cb.Execute(ctx, func() error { return errBackend })
		require.NoError(t, cb.Execute(ctx, func() error { return nil }))
		_ = cb.Execute(ctx, func() error { return errBackend })
		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("восстановление через полуоткрытое состояние", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("test", cfg)
		_ = cb.Execute(ctx, func() error { return errBackend })
		_ = cb.Execute(ctx, func() error { return errBackend })
		require.Equal(t, resilience.StateOpen, cb.GetState())

		time.Sleep(30 * time.Millisecond)

		assert.True(t, cb.AllowRequest(ctx))
		assert.Equal(t, resilience.StateHalfOpen, cb.GetState())
		cb.RecordResult(ctx, nil)
		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("ошибка пробного запроса снова размыкает", func(t *testing.T) {
		cb := resilience.NewCircuitBreaker("test", cfg)
		_ = cb.Execute(ctx, func() error { return errBackend })
		_ = cb.Execute(ctx, func() error { return errBackend })

		time.Sleep(30 * time.Millisecond)

		assert.ErrorIs(t, cb.Execute(ctx, func() error { return errBackend }), errBackend)
		assert.Equal(t, resilience.StateOpen, cb.GetState())
	})
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("успех после повторов", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", fastRetry(3)).Execute(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errBackend
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("исчерпание попыток", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", fastRetry(2)).Execute(ctx, func() error {
			attempts++
			return errBackend
		})

		assert.ErrorIs(t, err, errBackend)
		assert.Equal(t, 2, attempts)
	})

	t.Run("отмена контекста не повторяется", func(t *testing.T) {
		attempts := 0
		err := resilience.NewRetry("test", fastRetry(3)).Execute(ctx, func() error {
			attempts++
			return context.Canceled
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("отмена во время ожидания", func(t *testing.T) {
		cfg := fastRetry(3)
		cfg.InitialBackoff = time.Second
		cancelled, cancel := context.WithCancel(ctx)

		err := resilience.NewRetry("test", cfg).Execute(cancelled, func() error {
			cancel()
			return errBackend
		})

		assert.ErrorIs(t, err, resilience.ErrContextCanceled)
	})

	t.Run("некорректное число попыток", func(t *testing.T) {
		attempts := 0
		_ = resilience.NewRetry("test", resilience.RetryConfig{}).Execute(ctx, func() error {
			attempts++
			return errBackend
		})
		assert.Equal(t, 1, attempts)
	})
}

func TestServiceResilience(t *testing.T) {
	ctx := context.Background()
	svc := resilience.NewServiceResilienceWithConfig("test",
		resilience.CircuitBreakerConfig{ErrorThreshold: 1, Timeout: time.Minute, SuccessThreshold: 1},
		fastRetry(3))

	attempts := 0
	err := svc.ExecuteWithResilience(ctx, "op", func() error {
		attempts++
		return errBackend
	})
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, resilience.StateOpen, svc.State())

	err = svc.ExecuteWithResilience(ctx, "op", func() error {
		attempts++
		return nil
	})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 3, attempts)
}
