package vm

import (
	"fmt"

	"github.com/specialistvlad/gridvm/internal/trace"
)

// FatalFaultError reports a fault in a zone whose escalation policy is
// fatal. The run is aborted, the remaining schedule dropped, and the
// fault is still durably present in the trace.
type FatalFaultError struct {
	Operator string
	Zone     string
	Kind     trace.FaultKind
	Err      error
}

func (e *FatalFaultError) Error() string {
	return fmt.Sprintf("fatal %s fault in operator %q (zone %q): %v", e.Kind, e.Operator, e.Zone, e.Err)
}

func (e *FatalFaultError) Unwrap() error {
	return e.Err
}
