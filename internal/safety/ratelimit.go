package safety

// Rate configures the token bucket for one operator. Burst is the
// bucket capacity and the initial fill; Refill is how many tokens are
// added per tick, capped at Burst.
type Rate struct {
	Burst  float64
	Refill float64
}

// RateLimiter enforces a token bucket per operator. One invocation
// consumes one token; exhaustion rejects the call outright rather than
// queueing it. Operators without a configured rate are never limited.
type RateLimiter struct {
	rates   map[string]Rate
	buckets map[string]float64
}

// NewRateLimiter creates a limiter with every configured bucket full.
func NewRateLimiter(rates map[string]Rate) *RateLimiter {
	buckets := make(map[string]float64, len(rates))
	for op, rate := range rates {
		buckets[op] = rate.Burst
	}
	return &RateLimiter{rates: rates, buckets: buckets}
}

// Allow consumes one token from the operator's bucket, returning a
// *RateLimitError when the bucket is empty.
func (l *RateLimiter) Allow(op string) error {
	if _, ok := l.rates[op]; !ok {
		return nil
	}
	if l.buckets[op] < 1 {
		return &RateLimitError{Operator: op}
	}
	l.buckets[op]--
	return nil
}

// Tick refills every bucket by its configured rate, capped at burst.
// The VM calls this once per logical tick.
func (l *RateLimiter) Tick() {
	for op, rate := range l.rates {
		l.buckets[op] += rate.Refill
		if l.buckets[op] > rate.Burst {
			l.buckets[op] = rate.Burst
		}
	}
}
