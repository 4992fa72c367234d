package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kairos-quant/kairos/internal/cache"
	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/metrics"
)

// CachingProvider wraps another provider with the bar cache: cached windows
// are served from storage, everything else is fetched once and saved.
// Windows are keyed at day resolution, so repeated runs within a day share
// one entry and freshness is bounded by the TTL.
type CachingProvider struct {
	inner   Provider
	store   *cache.Store
	ttl     time.Duration
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewCachingProvider wraps inner. ttl bounds how long a cached window is
// served; metrics and logger may be nil.
func NewCachingProvider(inner Provider, store *cache.Store, ttl time.Duration, reg *metrics.Registry, logger *zap.Logger) *CachingProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingProvider{
		inner:   inner,
		store:   store,
		ttl:     ttl,
		metrics: reg,
		logger:  logger,
	}
}

func (p *CachingProvider) Fetch(ctx context.Context, ticker, interval string, from, to time.Time) (core.Series, error) {
	parts := map[string]any{
		"type":     "ohlcv",
		"ticker":   ticker,
		"interval": interval,
		"from":     from.UTC().Format(time.DateOnly),
		"to":       to.UTC().Format(time.DateOnly),
	}

	if series, ok := p.store.LoadBars(ctx, parts, p.ttl); ok {
		p.metrics.IncCache("bars", true)
		p.logger.Debug("bars served from cache",
			zap.String("ticker", ticker),
			zap.Int("rows", len(series)))
		return series, nil
	}
	p.metrics.IncCache("bars", false)

	series, err := p.inner.Fetch(ctx, ticker, interval, from, to)
	if err != nil {
		return nil, err
	}
	p.metrics.AddBarsLoaded(len(series))

	if err := p.store.SaveBars(ctx, parts, series, p.ttl); err != nil {
		p.logger.Warn("caching bars failed", zap.Error(err))
	}
	return series, nil
}
