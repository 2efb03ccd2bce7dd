package operator

import (
	"fmt"
	"sync"
)

// Library is the name→Operator mapping the VM resolves graph nodes
// from. Registration happens during setup; after that the library is
// effectively read-only and may be shared across VM instances.
type Library struct {
	mutex sync.RWMutex
	ops   map[string]Operator
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{ops: make(map[string]Operator)}
}

// Register adds an operator under a name. Registering the same name
// twice is a programmer error and panics, matching the registry
// behavior elsewhere in this codebase.
func (l *Library) Register(name string, op Operator) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.ops[name]; exists {
		panic(fmt.Sprintf("operator with name %q already registered", name))
	}
	l.ops[name] = op
}

// Lookup returns the operator registered under name, or an
// *UnknownOperatorError if there is none.
func (l *Library) Lookup(name string) (Operator, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	op, ok := l.ops[name]
	if !ok {
		return nil, &UnknownOperatorError{Name: name}
	}
	return op, nil
}

// Available returns a copy of the name→Operator mapping.
func (l *Library) Available() map[string]Operator {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	out := make(map[string]Operator, len(l.ops))
	for name, op := range l.ops {
		out[name] = op
	}
	return out
}
