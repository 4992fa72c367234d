// Package backtest simulates strategy signals against historical bars and
// summarizes the resulting portfolio performance.
package backtest

import (
	"time"

	"github.com/kairos-quant/kairos/internal/core"
)

// TradeType labels the direction of a fill.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// Trade is a single executed fill.
type Trade struct {
	Time     time.Time `json:"time"`
	Type     TradeType `json:"type"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
	Fee      float64   `json:"fee"`
}

// EquityPoint is the portfolio snapshot after processing one bar.
type EquityPoint struct {
	Time        time.Time `json:"time"`
	Cash        float64   `json:"cash"`
	CoinValue   float64   `json:"coin_value"`
	TotalValue  float64   `json:"total_value"`
	Peak        float64   `json:"peak"`
	DrawdownPct float64   `json:"drawdown_pct"`
}

// Summary holds the aggregate performance figures for a run.
type Summary struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	TotalDays       float64   `json:"total_days"`
	InitialCapital  float64   `json:"initial_capital"`
	FinalCapital    float64   `json:"final_capital"`
	TotalReturnPct  float64   `json:"total_return_pct"`
	AnnualReturnPct float64   `json:"annual_return_pct"`
	MaxDrawdownPct  float64   `json:"max_drawdown_pct"`
	TradeCount      int       `json:"trade_count"`
	WinRatePct      float64   `json:"win_rate_pct"`
	SharpeRatio     float64   `json:"sharpe_ratio"`
}

// Request describes one backtest to run.
type Request struct {
	Ticker         string             `json:"ticker"`
	Interval       string             `json:"interval"`
	Period         string             `json:"period"`
	StrategyCode   string             `json:"strategy"`
	Params         map[string]float64 `json:"params,omitempty"`
	InitialCapital float64            `json:"initial_capital"`
}

// Result is the full outcome of a backtest run.
type Result struct {
	RunID    string            `json:"run_id"`
	Request  Request           `json:"request"`
	Signals  core.SignalSeries `json:"signals"`
	Trades   []Trade           `json:"trades"`
	Equity   []EquityPoint     `json:"equity"`
	Summary  Summary           `json:"summary"`
	Cached   bool              `json:"cached"`
	Duration time.Duration     `json:"duration_ns"`
}
