package program

import (
	"fmt"
	"sort"
)

// Validate checks the cross-references of a loaded program: unique
// operator names, dependencies and zone members naming real operators,
// each operator in at most one zone, known policies and sane limits.
// It returns the first problem found, in deterministic order.
func (p *Program) Validate() error {
	names := make(map[string]struct{}, len(p.Operators))
	for _, op := range p.Operators {
		if op.Name == "" {
			return fmt.Errorf("operator of kind %q has no name", op.Kind)
		}
		if op.Kind == "" {
			return fmt.Errorf("operator %q has no kind", op.Name)
		}
		if _, dup := names[op.Name]; dup {
			return fmt.Errorf("duplicate operator name %q", op.Name)
		}
		names[op.Name] = struct{}{}
	}

	for _, op := range p.Operators {
		for _, dep := range op.DependsOn {
			if _, ok := names[dep]; !ok {
				return fmt.Errorf("operator %q depends on unknown operator %q", op.Name, dep)
			}
			if dep == op.Name {
				return fmt.Errorf("operator %q depends on itself", op.Name)
			}
		}
		if op.Rate != nil && (op.Rate.Burst < 0 || op.Rate.Refill < 0) {
			return fmt.Errorf("operator %q: rate burst and refill must be non-negative", op.Name)
		}
	}

	zoneNames := make(map[string]struct{}, len(p.Zones))
	zoned := make(map[string]string)
	for _, z := range p.Zones {
		if z.Name == "" {
			return fmt.Errorf("zone with members %v has no name", z.Members)
		}
		if _, dup := zoneNames[z.Name]; dup {
			return fmt.Errorf("duplicate zone name %q", z.Name)
		}
		zoneNames[z.Name] = struct{}{}

		switch z.Policy {
		case "", "contain", "fatal":
		default:
			return fmt.Errorf("zone %q: unknown policy %q (want \"contain\" or \"fatal\")", z.Name, z.Policy)
		}

		for _, member := range z.Members {
			if _, ok := names[member]; !ok {
				return fmt.Errorf("zone %q names unknown operator %q", z.Name, member)
			}
			if owner, taken := zoned[member]; taken {
				return fmt.Errorf("operator %q claimed by both zone %q and zone %q", member, owner, z.Name)
			}
			zoned[member] = z.Name
		}
	}

	seenLimits := make(map[string]struct{}, len(p.Limits))
	for _, lim := range p.Limits {
		if lim.Key == "" {
			return fmt.Errorf("safety limit has no key")
		}
		if _, dup := seenLimits[lim.Key]; dup {
			return fmt.Errorf("duplicate safety limit for %q", lim.Key)
		}
		seenLimits[lim.Key] = struct{}{}
		if lim.Min != nil && lim.Max != nil && *lim.Min > *lim.Max {
			return fmt.Errorf("safety limit %q: min %v exceeds max %v", lim.Key, *lim.Min, *lim.Max)
		}
	}

	return nil
}

// OperatorNames returns every operator name, sorted.
func (p *Program) OperatorNames() []string {
	out := make([]string, 0, len(p.Operators))
	for _, op := range p.Operators {
		out = append(out, op.Name)
	}
	sort.Strings(out)
	return out
}
