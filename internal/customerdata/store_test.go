package customerdata

import (
	"context"
	"testing"

	"github.com/dealbrief/dealbrief/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(":memory:", logging.New(nil, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord() map[string]any {
	return map[string]any{
		"negotiation_style":    "collaborative",
		"current_target_price": 108.0,
		"current_cost_price":   100.0,
		"purchase_history": []any{
			map[string]any{"date": "2024-01-20", "price_achieved": 109.1},
			map[string]any{"date": "2024-03-01", "price_achieved": 106.0},
		},
	}
}

func TestStorePutGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "Customer C", sampleRecord()))

	got, err := s.Get(ctx, "Customer C")
	require.NoError(t, err)
	assert.Equal(t, "collaborative", got["negotiation_style"])
	assert.Equal(t, 108.0, got["current_target_price"])
	assert.Len(t, got["purchase_history"], 2)
}

func TestStoreGetMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.Get(context.Background(), "ACME TECH")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorePutReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "Customer A", map[string]any{"v": 1.0}))
	require.NoError(t, s.Put(ctx, "Customer A", map[string]any{"v": 2.0}))

	got, err := s.Get(ctx, "Customer A")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got["v"])
}

func TestStoreList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "Zeta Corp", map[string]any{}))
	require.NoError(t, s.Put(ctx, "Alpha Inc", map[string]any{}))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha Inc", "Zeta Corp"}, names)
}

func TestStoreDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "Customer B", map[string]any{}))
	require.NoError(t, s.Delete(ctx, "Customer B"))

	_, err := s.Get(ctx, "Customer B")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "Customer B"), ErrNotFound)
}

func TestMigrateIdempotent(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.migrate())
}
