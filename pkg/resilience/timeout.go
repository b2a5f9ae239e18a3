package resilience

import (
	"context"
	"fmt"
	"time"
)

// Call runs fn with a deadline of d and returns its value. A zero d means no
// deadline. fn must honour ctx for the deadline to cut it short.
func Call[T any](ctx context.Context, d time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	v, err := fn(callCtx)
	if err != nil && callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		var zero T
		return zero, fmt.Errorf("%s: %w (limit %v)", name, context.DeadlineExceeded, d)
	}
	return v, err
}
