package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kairos-quant/kairos/internal/core"
)

// Registry holds all Prometheus metrics. A nil *Registry is a valid no-op
// sink, so callers do not have to guard every record call.
type Registry struct {
	*prometheus.Registry

	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	cacheRequests    *prometheus.CounterVec
	signalsGenerated *prometheus.CounterVec
	barsLoaded       prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kairos_backtests_total",
				Help: "Total number of backtests",
			},
			[]string{"status"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kairos_backtest_duration_seconds",
				Help:    "Backtest duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kairos_cache_requests_total",
				Help: "Cache lookups by payload kind and outcome",
			},
			[]string{"kind", "result"},
		),
		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kairos_signals_generated_total",
				Help: "Total number of signals generated",
			},
			[]string{"strategy", "direction"},
		),
		barsLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kairos_bars_loaded_total",
				Help: "Total number of OHLCV bars loaded from providers",
			},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.cacheRequests)
	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.barsLoaded)

	return r
}

// ObserveBacktest records a backtest completion.
func (r *Registry) ObserveBacktest(status string, d time.Duration) {
	if r == nil {
		return
	}
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(d.Seconds())
}

// IncCache records one cache lookup for a payload kind.
func (r *Registry) IncCache(kind string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheRequests.WithLabelValues(kind, result).Inc()
}

// AddSignals records the non-hold signals a strategy produced.
func (r *Registry) AddSignals(strategyCode string, signals core.SignalSeries) {
	if r == nil {
		return
	}
	var buys, sells float64
	for _, sig := range signals {
		switch sig.Direction {
		case core.Buy:
			buys++
		case core.Sell:
			sells++
		}
	}
	r.signalsGenerated.WithLabelValues(strategyCode, "buy").Add(buys)
	r.signalsGenerated.WithLabelValues(strategyCode, "sell").Add(sells)
}

// AddBarsLoaded records bars fetched from a data provider.
func (r *Registry) AddBarsLoaded(n int) {
	if r == nil {
		return
	}
	r.barsLoaded.Add(float64(n))
}
