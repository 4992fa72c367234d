package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/strategy/builtin"
)

type fakeProvider struct {
	series core.Series
	calls  int
	err    error
}

func (p *fakeProvider) Fetch(_ context.Context, _, _ string, _, _ time.Time) (core.Series, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.series, nil
}

// memoryCache is a map-backed ResultCache for tests. fmt prints map keys in
// sorted order, which is canonical enough here.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) SaveJSON(_ context.Context, parts map[string]any, v any, _ time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[fmt.Sprintf("%v", parts)] = data
	return nil
}

func (c *memoryCache) LoadJSON(_ context.Context, parts map[string]any, v any) (bool, error) {
	data, ok := c.entries[fmt.Sprintf("%v", parts)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func trendingSeries(n int, end time.Time) core.Series {
	s := make(core.Series, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)
		if i%7 == 3 {
			price -= 5
		}
		s[i] = core.OHLCV{
			Ticker:   "KRW-BTC",
			Interval: "day",
			Close:    price,
			Time:     end.AddDate(0, 0, i-n),
		}
	}
	return s
}

func testOrchestrator(t *testing.T, provider DataProvider, cache ResultCache) *Orchestrator {
	t.Helper()
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	o, err := NewOrchestrator(OrchestratorOptions{
		Provider: provider,
		Registry: builtin.NewRegistry(),
		Cache:    cache,
		Sim:      SimConfig{InitialCapital: 10_000},
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)
	return o
}

func TestOrchestratorRun_EndToEnd(t *testing.T) {
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{series: trendingSeries(120, now)}
	o := testOrchestrator(t, provider, nil)

	res, err := o.Run(context.Background(), Request{
		Ticker:       "KRW-BTC",
		Interval:     "day",
		Period:       "90d",
		StrategyCode: "sma",
		Params:       map[string]float64{"short_window": 5, "long_window": 20},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Cached)
	assert.Len(t, res.Signals, 120)
	assert.Len(t, res.Equity, 120)
	assert.Equal(t, 10_000.0, res.Summary.InitialCapital)
	assert.Equal(t, 1, provider.calls)
}

func TestOrchestratorRun_SecondRunServedFromCache(t *testing.T) {
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{series: trendingSeries(120, now)}
	o := testOrchestrator(t, provider, newMemoryCache())

	req := Request{
		Ticker:       "KRW-BTC",
		Interval:     "day",
		Period:       "90d",
		StrategyCode: "buyhold",
	}

	first, err := o.Run(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, second.Cached)
	// bars are refetched to key the result by data fingerprint; bar caching
	// is the provider layer's job
	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestOrchestratorRun_ParamsChangeKeysApart(t *testing.T) {
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{series: trendingSeries(120, now)}
	o := testOrchestrator(t, provider, newMemoryCache())

	base := Request{Ticker: "KRW-BTC", Interval: "day", Period: "90d", StrategyCode: "sma"}

	_, err := o.Run(context.Background(), base)
	require.NoError(t, err)

	tweaked := base
	tweaked.Params = map[string]float64{"short_window": 7}
	res, err := o.Run(context.Background(), tweaked)
	require.NoError(t, err)

	assert.False(t, res.Cached)
	assert.Equal(t, 2, provider.calls)
}

func TestOrchestratorRun_DataChangeInvalidatesResult(t *testing.T) {
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{series: trendingSeries(120, now)}
	o := testOrchestrator(t, provider, newMemoryCache())

	req := Request{Ticker: "KRW-BTC", Interval: "day", Period: "90d", StrategyCode: "buyhold"}

	_, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	// the provider now serves different bars for the same window
	provider.series = trendingSeries(121, now)
	res, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, res.Cached, "new data must not be answered by the old result")
}

func TestOrchestratorRun_Deterministic(t *testing.T) {
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{series: trendingSeries(120, now)}
	o := testOrchestrator(t, provider, nil)

	req := Request{Ticker: "KRW-BTC", Interval: "day", Period: "90d", StrategyCode: "sma"}

	a, err := o.Run(context.Background(), req)
	require.NoError(t, err)
	b, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Signals, b.Signals)
	assert.Equal(t, a.Trades, b.Trades)
	assert.Equal(t, a.Equity, b.Equity)
	assert.Equal(t, a.Summary, b.Summary)
}

func TestOrchestratorRun_UnknownStrategy(t *testing.T) {
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{series: trendingSeries(120, now)}
	o := testOrchestrator(t, provider, nil)

	_, err := o.Run(context.Background(), Request{
		Ticker: "KRW-BTC", Interval: "day", Period: "90d", StrategyCode: "nope",
	})
	assert.ErrorIs(t, err, core.ErrUnknownStrategy)
}

func TestOrchestratorRun_BadPeriod(t *testing.T) {
	provider := &fakeProvider{}
	o := testOrchestrator(t, provider, nil)

	_, err := o.Run(context.Background(), Request{
		Ticker: "KRW-BTC", Interval: "day", Period: "ninety days", StrategyCode: "sma",
	})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Zero(t, provider.calls)
}

func TestOrchestratorRun_ProviderError(t *testing.T) {
	provider := &fakeProvider{err: core.ErrDataUnavailable}
	o := testOrchestrator(t, provider, nil)

	_, err := o.Run(context.Background(), Request{
		Ticker: "KRW-BTC", Interval: "day", Period: "90d", StrategyCode: "sma",
	})
	assert.ErrorIs(t, err, core.ErrDataUnavailable)
}

func TestOrchestratorRun_CancelledContext(t *testing.T) {
	provider := &fakeProvider{}
	o := testOrchestrator(t, provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, Request{
		Ticker: "KRW-BTC", Interval: "day", Period: "90d", StrategyCode: "sma",
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, provider.calls)
}

func TestNewOrchestrator_RequiresWiring(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorOptions{Registry: builtin.NewRegistry()})
	assert.ErrorIs(t, err, core.ErrConfigMissing)

	_, err = NewOrchestrator(OrchestratorOptions{Provider: &fakeProvider{}})
	assert.ErrorIs(t, err, core.ErrConfigMissing)
}
