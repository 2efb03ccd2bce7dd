package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/gridvm/internal/snapstore"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec := snapstore.Record{Version: 1, Tick: 5, Kind: snapstore.KindFull, Payload: []byte(`{}`), ContentHash: "h"}
	require.NoError(t, s.Put(ctx, rec))

	got, ok, err := s.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	require.NoError(t, s.Delete(ctx, 5))
	_, ok, err = s.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTicksAscending(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, tick := range []uint64{9, 1, 5} {
		require.NoError(t, s.Put(ctx, snapstore.Record{Tick: tick}))
	}

	ticks, err := s.Ticks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 5, 9}, ticks)
}
