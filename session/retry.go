package session

import (
	"context"
	"time"

	"github.com/mxhess/salvium-walletcore/walleterr"
)

// withRetry calls fn up to policy.Retries additional times, at
// policy.Delay apart, as long as the error it returns is one spec §7
// marks retryable (network_error, rpc_error). Any other error is returned
// as-is; exhausting the retry budget returns the last error wrapped as
// network_error, whichever retryable kind it had. Cancellation is only ever observed
// between attempts, never mid-call, matching spec §5's "suspension points
// only at Node boundaries".
func withRetry[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, walleterr.New(walleterr.KindCancelled, err)
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if policy.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}
		v, err := fn(callCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !walleterr.IsRetryable(err) {
			return zero, err
		}
		if attempt < policy.Retries {
			select {
			case <-ctx.Done():
				return zero, walleterr.New(walleterr.KindCancelled, ctx.Err())
			case <-time.After(policy.Delay):
			}
		}
	}
	return zero, walleterr.New(walleterr.KindNetworkError, lastErr)
}
