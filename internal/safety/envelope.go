package safety

// Envelope bundles the interval validator and the rate limiter into
// the single pre/post gate the VM calls around every invocation.
type Envelope struct {
	validator *Validator
	limiter   *RateLimiter
}

// NewEnvelope creates an envelope from constraints and per-operator
// rates. Both may be empty, in which case every check passes.
func NewEnvelope(constraints Constraints, rates map[string]Rate) *Envelope {
	return &Envelope{
		validator: NewValidator(constraints),
		limiter:   NewRateLimiter(rates),
	}
}

// PreCheck validates the state snapshot and consumes one rate-limit
// token for the operator. Either failure rejects the invocation before
// the operator runs.
func (e *Envelope) PreCheck(op string, snapshot map[string]any) error {
	if err := e.validator.Validate(snapshot); err != nil {
		return err
	}
	return e.limiter.Allow(op)
}

// PostCheck validates the state the operator left behind. A violation
// here means the operator's own output broke the envelope.
func (e *Envelope) PostCheck(op string, snapshot map[string]any) error {
	return e.validator.Validate(snapshot)
}

// Tick refills rate-limit buckets; called once per logical tick.
func (e *Envelope) Tick() {
	e.limiter.Tick()
}
