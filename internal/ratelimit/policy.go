package ratelimit

import "time"

// LimitConfig caps the number of requests allowed within a sliding window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps each scope to the limits enforced for it. Every limit of every
// resolved scope must hold for a request to pass.
type Policy struct {
	Limits map[Scope][]LimitConfig

	// Factor multiplies endpoint-specific limits. Zero means 1.
	Factor float64
}

// DefaultPolicy returns the limits used when none are configured.
// The auth scope is deliberately tight to slow down credential stuffing.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Second, Max: 50},
				{Window: time.Minute, Max: 2000},
			},
			ScopeRead: {
				{Window: time.Minute, Max: 1000},
			},
			ScopeWrite: {
				{Window: time.Minute, Max: 60},
				{Window: time.Hour, Max: 500},
			},
			ScopeAuth: {
				{Window: time.Minute, Max: 10},
				{Window: time.Hour, Max: 100},
			},
		},
	}
}

// Scale returns a copy of the policy with every Max multiplied by factor,
// never dropping below one request per window. Endpoint-specific limits are
// scaled by the same factor when they are enforced.
func (p *Policy) Scale(factor float64) *Policy {
	scaled := &Policy{
		Limits: make(map[Scope][]LimitConfig, len(p.Limits)),
		Factor: p.factor() * factor,
	}

	for scope, limits := range p.Limits {
		scaled.Limits[scope] = scaleLimits(limits, factor)
	}

	return scaled
}

func (p *Policy) factor() float64 {
	if p.Factor == 0 {
		return 1
	}

	return p.Factor
}

func scaleLimits(limits []LimitConfig, factor float64) []LimitConfig {
	if factor == 1 {
		return limits
	}

	out := make([]LimitConfig, len(limits))

	for i, limit := range limits {
		out[i] = LimitConfig{Window: limit.Window, Max: max(1, int64(float64(limit.Max)*factor))}
	}

	return out
}
