// Package provider loads historical OHLCV series for the backtester. The CSV
// provider reads exported candle files; the caching provider wraps any other
// provider with the parquet bar cache.
package provider

import (
	"context"
	"time"

	"github.com/kairos-quant/kairos/internal/core"
)

// Provider supplies historical bars for a ticker over a time window.
type Provider interface {
	Fetch(ctx context.Context, ticker, interval string, from, to time.Time) (core.Series, error)
}
