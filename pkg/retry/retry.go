// Package retry wraps failsafe-go retry policies behind a fixed-count,
// fixed-delay policy applied at the exchange-call boundary.
package retry

import (
	"context"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Policy defines how to retry an operation
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy is a sensible default retry policy
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	Delay:       500 * time.Millisecond,
}

// IsTransientFunc decides if an error is transient and should be retried
type IsTransientFunc func(error) bool

// Do executes fn under the policy, retrying only errors the classifier marks
// as transient. The final error is returned once attempts are exhausted.
func Do[T any](ctx context.Context, policy Policy, isTransient IsTransientFunc, fn func() (T, error)) (T, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	// ReturnLastFailure keeps the underlying error visible to errors.Is
	// instead of a retrypolicy.ExceededError wrapper.
	rp := retrypolicy.NewBuilder[T]().
		HandleIf(func(_ T, err error) bool {
			return err != nil && isTransient(err)
		}).
		WithDelay(policy.Delay).
		WithMaxRetries(attempts - 1).
		ReturnLastFailure().
		Build()

	return failsafe.With[T](rp).WithContext(ctx).Get(func() (T, error) {
		return fn()
	})
}
