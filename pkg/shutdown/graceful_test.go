package shutdown_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"useridentity/pkg/shutdown"
)

func TestWait_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var called atomic.Int32
	done := make(chan struct{})
	go func() {
		shutdown.Wait(ctx, time.Second,
			func(context.Context) error { called.Add(1); return nil },
			func(context.Context) error { called.Add(1); return errors.New("close failed") },
		)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait не завершился после отмены контекста")
	}
	assert.Equal(t, int32(2), called.Load())
}

func TestRun_RespectsTimeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		select {
		case <-time.After(2 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	start := time.Now()
	shutdown.Run(context.Background(), 200*time.Millisecond, slow)

	assert.Less(t, time.Since(start), time.Second)
}
