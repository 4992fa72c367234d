package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairos-quant/kairos/internal/storage"
)

func testBackend(t *testing.T) storage.Backend {
	t.Helper()
	backend, err := storage.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	return backend
}

func TestKey_OrderIndependent(t *testing.T) {
	a, err := Key(map[string]any{"ticker": "KRW-BTC", "interval": "day", "count": 90})
	require.NoError(t, err)
	b, err := Key(map[string]any{"count": 90, "interval": "day", "ticker": "KRW-BTC"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestKey_DistinguishesValues(t *testing.T) {
	a, err := Key(map[string]any{"ticker": "KRW-BTC"})
	require.NoError(t, err)
	b, err := Key(map[string]any{"ticker": "KRW-ETH"})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestKey_NestedPartsAreCanonical(t *testing.T) {
	a, err := Key(map[string]any{"strategy": "sma", "params": map[string]float64{"short_window": 5, "long_window": 20}})
	require.NoError(t, err)
	b, err := Key(map[string]any{"params": map[string]float64{"long_window": 20, "short_window": 5}, "strategy": "sma"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestKey_Empty(t *testing.T) {
	_, err := Key(nil)
	assert.Error(t, err)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(testBackend(t))
	ctx := context.Background()
	parts := map[string]any{"type": "result", "ticker": "KRW-BTC"}

	require.NoError(t, store.Save(ctx, parts, "json", []byte(`{"x":1}`), time.Hour))

	got, ok := store.Load(ctx, parts, "json", 0)
	require.True(t, ok)
	assert.Equal(t, `{"x":1}`, string(got))
}

func TestStore_MissWhenAbsent(t *testing.T) {
	store := NewStore(testBackend(t))

	_, ok := store.Load(context.Background(), map[string]any{"ticker": "KRW-BTC"}, "json", 0)
	assert.False(t, ok)
}

func TestStore_ExpiresByStoredTTL(t *testing.T) {
	now := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := &now
	store := NewStore(testBackend(t), WithClock(func() time.Time { return *clock }))
	ctx := context.Background()
	parts := map[string]any{"ticker": "KRW-BTC"}

	require.NoError(t, store.Save(ctx, parts, "json", []byte("payload"), time.Hour))

	_, ok := store.Load(ctx, parts, "json", 0)
	assert.True(t, ok, "fresh entry must hit")

	now = now.Add(2 * time.Hour)
	_, ok = store.Load(ctx, parts, "json", 0)
	assert.False(t, ok, "entry past its stored TTL must miss")
}

func TestStore_ExpiresByCallerMaxAge(t *testing.T) {
	now := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := &now
	store := NewStore(testBackend(t), WithClock(func() time.Time { return *clock }))
	ctx := context.Background()
	parts := map[string]any{"ticker": "KRW-BTC"}

	// stored without expiry
	require.NoError(t, store.Save(ctx, parts, "json", []byte("payload"), 0))

	now = now.Add(48 * time.Hour)
	_, ok := store.Load(ctx, parts, "json", 0)
	assert.True(t, ok, "non-expiring entry must hit")

	_, ok = store.Load(ctx, parts, "json", 24*time.Hour)
	assert.False(t, ok, "caller max age must override")
}

func TestStore_CorruptMetadataIsMiss(t *testing.T) {
	backend := testBackend(t)
	store := NewStore(backend)
	ctx := context.Background()
	parts := map[string]any{"ticker": "KRW-BTC"}

	require.NoError(t, store.Save(ctx, parts, "json", []byte("payload"), time.Hour))

	key, err := Key(parts)
	require.NoError(t, err)
	require.NoError(t, backend.Write(ctx, key+".meta.json", []byte("{not json")))

	_, ok := store.Load(ctx, parts, "json", 0)
	assert.False(t, ok)
}

func TestStore_LoadJSONCorruptPayloadIsMiss(t *testing.T) {
	backend := testBackend(t)
	store := NewStore(backend)
	ctx := context.Background()
	parts := map[string]any{"ticker": "KRW-BTC"}

	require.NoError(t, store.SaveJSON(ctx, parts, map[string]int{"x": 1}, time.Hour))

	key, err := Key(parts)
	require.NoError(t, err)
	require.NoError(t, backend.Write(ctx, key+".json", []byte("{truncated")))

	var v map[string]int
	ok, err := store.LoadJSON(ctx, parts, &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveJSONLoadJSON(t *testing.T) {
	store := NewStore(testBackend(t))
	ctx := context.Background()
	parts := map[string]any{"type": "result", "run": "x"}

	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	require.NoError(t, store.SaveJSON(ctx, parts, payload{Name: "sharpe", Value: 1.3}, time.Hour))

	var got payload
	ok, err := store.LoadJSON(ctx, parts, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "sharpe", Value: 1.3}, got)
}

func TestStore_ClearRemovesOldEntries(t *testing.T) {
	now := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := &now
	store := NewStore(testBackend(t), WithClock(func() time.Time { return *clock }))
	ctx := context.Background()

	oldParts := map[string]any{"ticker": "KRW-BTC"}
	require.NoError(t, store.Save(ctx, oldParts, "json", []byte("old"), 0))

	now = now.Add(72 * time.Hour)
	newParts := map[string]any{"ticker": "KRW-ETH"}
	require.NoError(t, store.Save(ctx, newParts, "json", []byte("new"), 0))

	removed, err := store.Clear(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok := store.Load(ctx, oldParts, "json", 0)
	assert.False(t, ok, "old entry must be gone")
	_, ok = store.Load(ctx, newParts, "json", 0)
	assert.True(t, ok, "fresh entry must survive")
}

func TestStore_ClearAll(t *testing.T) {
	store := NewStore(testBackend(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]any{"a": 1}, "json", []byte("1"), 0))
	require.NoError(t, store.Save(ctx, map[string]any{"b": 2}, "json", []byte("2"), 0))

	removed, err := store.Clear(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}
