package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// memo runs its load function at most once. The result, error included, is
// kept for the lifetime of the value: there is no reload path.
type memo[T any] struct {
	once sync.Once
	done atomic.Bool
	val  T
	err  error
}

func (m *memo[T]) get(load func() (T, error)) (T, error) {
	m.once.Do(func() {
		m.val, m.err = load()
		m.done.Store(true)
	})
	return m.val, m.err
}

// loaded reports whether the single load has finished successfully.
func (m *memo[T]) loaded() bool {
	return m.done.Load() && m.err == nil
}

// loadContext detaches the load from the caller's cancellation so that one
// aborted request cannot leave a cached failure behind, while still bounding
// the read with timeout.
func loadContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
