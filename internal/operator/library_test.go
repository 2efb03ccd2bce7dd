package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/gridvm/internal/state"
)

func noop(ctx context.Context, st *state.State, goal map[string]any) (any, error) {
	return "ok", nil
}

func TestLibraryRegisterAndLookup(t *testing.T) {
	lib := NewLibrary()
	lib.Register("noop", Func(noop))

	op, err := lib.Lookup("noop")
	require.NoError(t, err)

	result, err := op.Execute(context.Background(), state.New(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestLibraryLookupUnknown(t *testing.T) {
	lib := NewLibrary()

	_, err := lib.Lookup("missing")
	var unknownErr *UnknownOperatorError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "missing", unknownErr.Name)
}

func TestLibraryDuplicateRegistrationPanics(t *testing.T) {
	lib := NewLibrary()
	lib.Register("dup", Func(noop))

	assert.Panics(t, func() {
		lib.Register("dup", Func(noop))
	})
}

func TestAvailableReturnsCopy(t *testing.T) {
	lib := NewLibrary()
	lib.Register("a", Func(noop))

	m := lib.Available()
	delete(m, "a")

	_, err := lib.Lookup("a")
	assert.NoError(t, err)
}
