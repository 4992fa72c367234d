package backtest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/metrics"
	"github.com/kairos-quant/kairos/internal/strategy"
)

// DataProvider supplies historical bars for a ticker over a time window.
type DataProvider interface {
	Fetch(ctx context.Context, ticker, interval string, from, to time.Time) (core.Series, error)
}

// ResultCache is the slice of the cache layer the orchestrator uses for
// finished results.
type ResultCache interface {
	SaveJSON(ctx context.Context, parts map[string]any, v any, ttl time.Duration) error
	LoadJSON(ctx context.Context, parts map[string]any, v any) (bool, error)
}

var (
	errNoProvider = errors.New("data provider not set")
	errNoRegistry = errors.New("strategy registry not set")
)

// OrchestratorOptions wires an Orchestrator. Provider and Registry are
// required; everything else is optional.
type OrchestratorOptions struct {
	Provider  DataProvider
	Registry  *strategy.Registry
	Cache     ResultCache
	Metrics   *metrics.Registry
	Logger    *zap.Logger
	Sim       SimConfig
	Stats     StatsConfig
	ResultTTL time.Duration
	Now       func() time.Time
}

// Orchestrator runs the full pipeline for one request: load bars, apply the
// strategy, simulate, summarize. Finished results are cached read-through
// keyed by the request, so an identical request is answered without
// recomputing.
type Orchestrator struct {
	provider  DataProvider
	registry  *strategy.Registry
	cache     ResultCache
	metrics   *metrics.Registry
	logger    *zap.Logger
	sim       SimConfig
	stats     StatsConfig
	resultTTL time.Duration
	now       func() time.Time
}

func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Provider == nil {
		return nil, core.WrapError(core.ErrConfigMissing, errNoProvider)
	}
	if opts.Registry == nil {
		return nil, core.WrapError(core.ErrConfigMissing, errNoRegistry)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		provider:  opts.Provider,
		registry:  opts.Registry,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		sim:       opts.Sim,
		stats:     opts.Stats,
		resultTTL: opts.ResultTTL,
		now:       opts.Now,
	}, nil
}

// Run executes one backtest. The bars are fetched first (the provider layer
// has its own cache); the finished result is then keyed by the request plus
// the data fingerprint, so a result computed from stale bars never shadows a
// run over fresh ones.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := o.now()
	fail := func(err error) (*Result, error) {
		o.metrics.ObserveBacktest("error", o.now().Sub(started))
		return nil, err
	}

	from, err := ParsePeriod(req.Period, started)
	if err != nil {
		return nil, err
	}

	series, err := o.provider.Fetch(ctx, req.Ticker, req.Interval, from, started)
	if err != nil {
		return fail(err)
	}
	if err := series.Validate(); err != nil {
		return fail(err)
	}

	parts := resultKeyParts(req, series.Fingerprint())
	if o.cache != nil {
		var cached Result
		hit, err := o.cache.LoadJSON(ctx, parts, &cached)
		if err != nil {
			o.logger.Warn("result cache read failed", zap.Error(err))
		}
		o.metrics.IncCache("result", hit)
		if hit {
			cached.Cached = true
			o.logger.Info("backtest served from cache",
				zap.String("ticker", req.Ticker),
				zap.String("strategy", req.StrategyCode))
			return &cached, nil
		}
	}

	result, err := o.run(ctx, req, series)
	if err != nil {
		return fail(err)
	}
	result.Duration = o.now().Sub(started)

	if o.cache != nil {
		if err := o.cache.SaveJSON(ctx, parts, result, o.resultTTL); err != nil {
			o.logger.Warn("result cache write failed", zap.Error(err))
		}
	}
	o.metrics.ObserveBacktest("ok", result.Duration)

	o.logger.Info("backtest complete",
		zap.String("run_id", result.RunID),
		zap.String("ticker", req.Ticker),
		zap.String("strategy", req.StrategyCode),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("total_return_pct", result.Summary.TotalReturnPct))
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request, series core.Series) (*Result, error) {
	strat, err := o.registry.New(req.StrategyCode, paramsToAny(req.Params))
	if err != nil {
		return nil, err
	}

	signals, err := strat.Apply(series)
	if err != nil {
		return nil, err
	}
	o.metrics.AddSignals(req.StrategyCode, signals)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	simCfg := o.sim
	if req.InitialCapital > 0 {
		simCfg.InitialCapital = req.InitialCapital
	}
	trades, equity, err := NewSimulator(simCfg).Run(series, signals)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:   uuid.NewString(),
		Request: req,
		Signals: signals,
		Trades:  trades,
		Equity:  equity,
		Summary: Summarize(trades, equity, simCfg.InitialCapital, o.stats),
	}, nil
}

// resultKeyParts canonicalizes a request into cache key parts. Params are
// nested so two requests differing only in a parameter hash apart; the data
// fingerprint ties the result to the exact bars it was computed from.
func resultKeyParts(req Request, fingerprint string) map[string]any {
	parts := map[string]any{
		"type":     "result",
		"ticker":   req.Ticker,
		"interval": req.Interval,
		"period":   req.Period,
		"strategy": req.StrategyCode,
		"capital":  req.InitialCapital,
		"data":     fingerprint,
	}
	if len(req.Params) > 0 {
		parts["params"] = req.Params
	}
	return parts
}

func paramsToAny(params map[string]float64) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
