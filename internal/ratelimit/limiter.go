package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded describes the first limit a request broke.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter enforces a Policy on top of a Store.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request against every limit of the given scopes.
// The returned LimitExceeded is nil when the request is allowed.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (*LimitExceeded, error) {
	for _, scope := range scopes {
		exceeded, err := l.check(ctx, clientKey+":"+string(scope), scope, l.policy.Limits[scope])
		if err != nil || exceeded != nil {
			return exceeded, err
		}
	}

	return nil, nil
}

// AllowLimits records the request against endpoint-specific limits tracked
// under the route name instead of the policy scopes. The limits are scaled by
// the policy's Factor.
func (l *PolicyLimiter) AllowLimits(
	ctx context.Context, clientKey, route string, limits []LimitConfig,
) (*LimitExceeded, error) {
	return l.check(ctx, clientKey+":route:"+route, ScopeEndpoint, scaleLimits(limits, l.policy.factor()))
}

func (l *PolicyLimiter) check(
	ctx context.Context, prefix string, scope Scope, limits []LimitConfig,
) (*LimitExceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:%d", prefix, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}

		if count > limit.Max {
			return &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
		}
	}

	return nil, nil
}
