package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kairos-quant/kairos/internal/backtest"
	"github.com/kairos-quant/kairos/internal/config"
	"github.com/kairos-quant/kairos/internal/logger"
	"github.com/kairos-quant/kairos/internal/metrics"
	"github.com/kairos-quant/kairos/internal/provider"
	"github.com/kairos-quant/kairos/internal/strategy/builtin"
)

var (
	backtestTicker   string
	backtestPeriod   string
	backtestInterval string
	backtestCapital  float64
	backtestParams   []string
	backtestNoCache  bool
	backtestTrades   bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a strategy against historical data",
	Long:  "Run a strategy against cached or exported candle data and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestTicker, "ticker", "", "Ticker to backtest, e.g. KRW-BTC (required)")
	backtestCmd.Flags().StringVar(&backtestPeriod, "period", "90d", "Lookback period: <n>d, <n>w, <n>m or <n>y")
	backtestCmd.Flags().StringVar(&backtestInterval, "interval", "day", "Candle interval")
	backtestCmd.Flags().Float64Var(&backtestCapital, "capital", 0, "Initial capital (0 = config default)")
	backtestCmd.Flags().StringArrayVar(&backtestParams, "param", nil, "Strategy parameter override, key=value (repeatable)")
	backtestCmd.Flags().BoolVar(&backtestNoCache, "no-cache", false, "Bypass the result cache")
	backtestCmd.Flags().BoolVar(&backtestTrades, "trades", false, "Print the individual trades")

	backtestCmd.MarkFlagRequired("ticker")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	strategyCode := args[0]

	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	store, err := newCacheStore(cfg, log)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Listen, reg, log)
	}

	bars := provider.NewCachingProvider(
		provider.NewCSVProvider(cfg.Data.Dir),
		store,
		cfg.Cache.TTL,
		reg,
		logger.Component(log, "provider"),
	)

	var resultCache backtest.ResultCache
	if !backtestNoCache {
		resultCache = store
	}

	orch, err := backtest.NewOrchestrator(backtest.OrchestratorOptions{
		Provider: bars,
		Registry: builtin.NewRegistry(logger.Component(log, "strategy")),
		Cache:    resultCache,
		Metrics:  reg,
		Logger:   logger.Component(log, "backtest"),
		Sim: backtest.SimConfig{
			InitialCapital: cfg.Backtest.InitialCapital,
			FeeRate:        cfg.Backtest.FeeRate,
			MaxInvestRatio: cfg.Backtest.MaxInvestRatio,
			AllowShort:     cfg.Backtest.AllowShort,
			Reentry:        backtest.ReentryPolicy(cfg.Backtest.ReentryPolicy),
		},
		Stats:     backtest.StatsConfig{RiskFreeRate: cfg.Backtest.RiskFreeRate},
		ResultTTL: cfg.Backtest.ResultTTL,
	})
	if err != nil {
		return err
	}

	params, err := resolveParams(cfg, strategyCode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := orch.Run(ctx, backtest.Request{
		Ticker:         backtestTicker,
		Interval:       backtestInterval,
		Period:         backtestPeriod,
		StrategyCode:   strategyCode,
		Params:         params,
		InitialCapital: backtestCapital,
	})
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

// resolveParams layers CLI --param overrides on top of the config file's
// per-strategy params.
func resolveParams(cfg *config.Config, strategyCode string) (map[string]float64, error) {
	params := make(map[string]float64)

	if sc, ok := cfg.Strategies[strategyCode]; ok {
		for name, raw := range sc.Params {
			switch v := raw.(type) {
			case float64:
				params[name] = v
			case int:
				params[name] = float64(v)
			case int64:
				params[name] = float64(v)
			default:
				return nil, fmt.Errorf("config param %s.%s: expected number, got %T", strategyCode, name, raw)
			}
		}
	}

	for _, kv := range backtestParams {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, want key=value", kv)
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", kv, err)
		}
		params[name] = f
	}

	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

func serveMetrics(listen string, reg *metrics.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Warn("metrics listener stopped", zap.Error(err))
	}
}

func printResult(r *backtest.Result) {
	s := r.Summary

	fmt.Println("=== KAIROS Backtest ===")
	fmt.Printf("Run:       %s%s\n", r.RunID, cachedTag(r.Cached))
	fmt.Printf("Strategy:  %s\n", r.Request.StrategyCode)
	fmt.Printf("Ticker:    %s (%s)\n", r.Request.Ticker, r.Request.Interval)
	fmt.Printf("Window:    %s to %s (%.0f days)\n",
		s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.TotalDays)
	fmt.Println()
	fmt.Printf("Initial capital:  %14.2f\n", s.InitialCapital)
	fmt.Printf("Final capital:    %14.2f\n", s.FinalCapital)
	fmt.Printf("Total return:     %13.2f%%\n", s.TotalReturnPct)
	fmt.Printf("Annual return:    %13.2f%%\n", s.AnnualReturnPct)
	fmt.Printf("Max drawdown:     %13.2f%%\n", s.MaxDrawdownPct)
	fmt.Printf("Sharpe ratio:     %14.2f\n", s.SharpeRatio)
	fmt.Printf("Trades:           %14d\n", s.TradeCount)
	fmt.Printf("Win rate:         %13.2f%%\n", s.WinRatePct)

	if backtestTrades && len(r.Trades) > 0 {
		fmt.Println()
		fmt.Println("Trades:")
		for _, tr := range r.Trades {
			fmt.Printf("  %s  %-4s  price %12.2f  qty %10.6f  fee %8.2f\n",
				tr.Time.Format(time.RFC3339), tr.Type, tr.Price, tr.Quantity, tr.Fee)
		}
	}
}

func cachedTag(cached bool) string {
	if cached {
		return "  (cached)"
	}
	return ""
}
