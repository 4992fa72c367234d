package backtest

import (
	"fmt"
	"math"

	"github.com/kairos-quant/kairos/internal/core"
)

// ReentryPolicy controls what happens when a signal points the same way as
// the position already held.
type ReentryPolicy string

const (
	// ReentryIgnore drops same-direction signals while a position is open.
	ReentryIgnore ReentryPolicy = "ignore"
	// ReentryReenter closes the position and immediately reopens it at the
	// current bar, realizing fees on both legs.
	ReentryReenter ReentryPolicy = "reenter"
)

// SimConfig holds the execution parameters of a simulation run.
type SimConfig struct {
	InitialCapital float64
	// FeeRate is the proportional fee charged on every fill's notional.
	FeeRate float64
	// MaxInvestRatio is the fraction of available cash deployed on entry.
	MaxInvestRatio float64
	AllowShort     bool
	Reentry        ReentryPolicy
}

const (
	DefaultFeeRate        = 0.002
	DefaultMaxInvestRatio = 1.0

	// equityFloorRatio bounds the reported portfolio value away from zero so
	// drawdown and return math stay finite after a wipeout.
	equityFloorRatio = 1e-4
)

func (c SimConfig) normalized() SimConfig {
	if c.FeeRate <= 0 {
		c.FeeRate = DefaultFeeRate
	}
	if c.MaxInvestRatio <= 0 || c.MaxInvestRatio > 1 {
		c.MaxInvestRatio = DefaultMaxInvestRatio
	}
	if c.Reentry == "" {
		c.Reentry = ReentryIgnore
	}
	return c
}

// Simulator replays signals against bars and tracks the resulting portfolio.
//
// The position machine has three states: flat, long and short. A buy signal
// while flat opens a long; a sell signal while flat opens a short when
// shorting is enabled and is dropped otherwise. An opposite-direction signal
// closes the open position; entering the other side takes a further signal
// from flat. Same-direction signals follow the reentry policy. At most one
// position transition happens per bar.
type Simulator struct {
	cfg SimConfig
}

func NewSimulator(cfg SimConfig) *Simulator {
	return &Simulator{cfg: cfg.normalized()}
}

// Run executes the signals against the series. Both slices must be aligned
// row for row; series must already be validated.
func (s *Simulator) Run(series core.Series, signals core.SignalSeries) ([]Trade, []EquityPoint, error) {
	if len(series) != len(signals) {
		return nil, nil, core.WrapError(core.ErrSeriesInvalid,
			fmt.Errorf("%d bars but %d signals", len(series), len(signals)))
	}
	if s.cfg.InitialCapital <= 0 {
		return nil, nil, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("initial capital %v must be positive", s.cfg.InitialCapital))
	}

	cash := s.cfg.InitialCapital
	coin := 0.0
	floor := s.cfg.InitialCapital * equityFloorRatio

	trades := make([]Trade, 0, 16)
	equity := make([]EquityPoint, len(series))
	peak := s.cfg.InitialCapital

	for i, bar := range series {
		price := bar.Close

		switch signals[i].Direction {
		case core.Buy:
			switch {
			case coin == 0:
				cash, coin = s.openLong(&trades, bar, cash)
			case coin < 0:
				cash, coin = s.closeShort(&trades, bar, cash, coin)
			default: // already long
				if s.cfg.Reentry == ReentryReenter {
					cash, coin = s.closeLong(&trades, bar, cash, coin)
					cash, coin = s.openLong(&trades, bar, cash)
				}
			}
		case core.Sell:
			switch {
			case coin > 0:
				cash, coin = s.closeLong(&trades, bar, cash, coin)
			case coin == 0:
				if s.cfg.AllowShort {
					cash, coin = s.openShort(&trades, bar, cash)
				}
			default: // already short
				if s.cfg.AllowShort && s.cfg.Reentry == ReentryReenter {
					cash, coin = s.closeShort(&trades, bar, cash, coin)
					cash, coin = s.openShort(&trades, bar, cash)
				}
			}
		}

		coinValue := coin * price
		total := cash + coinValue
		if total < floor {
			total = floor
		}
		if total > peak {
			peak = total
		}
		equity[i] = EquityPoint{
			Time:        bar.Time,
			Cash:        cash,
			CoinValue:   coinValue,
			TotalValue:  total,
			Peak:        peak,
			DrawdownPct: (total/peak - 1) * 100,
		}
	}

	return trades, equity, nil
}

func (s *Simulator) openLong(trades *[]Trade, bar core.OHLCV, cash float64) (float64, float64) {
	spend := cash * s.cfg.MaxInvestRatio
	if spend <= 0 {
		return cash, 0
	}
	fee := spend * s.cfg.FeeRate
	qty := (spend - fee) / bar.Close
	*trades = append(*trades, Trade{Time: bar.Time, Type: TradeBuy, Price: bar.Close, Quantity: qty, Fee: fee})
	return cash - spend, qty
}

func (s *Simulator) closeLong(trades *[]Trade, bar core.OHLCV, cash, coin float64) (float64, float64) {
	gross := coin * bar.Close
	fee := gross * s.cfg.FeeRate
	*trades = append(*trades, Trade{Time: bar.Time, Type: TradeSell, Price: bar.Close, Quantity: coin, Fee: fee})
	return cash + gross - fee, 0
}

func (s *Simulator) openShort(trades *[]Trade, bar core.OHLCV, cash float64) (float64, float64) {
	notional := cash * s.cfg.MaxInvestRatio
	if notional <= 0 {
		return cash, 0
	}
	qty := notional / bar.Close
	fee := notional * s.cfg.FeeRate
	*trades = append(*trades, Trade{Time: bar.Time, Type: TradeSell, Price: bar.Close, Quantity: qty, Fee: fee})
	return cash + notional - fee, -qty
}

func (s *Simulator) closeShort(trades *[]Trade, bar core.OHLCV, cash, coin float64) (float64, float64) {
	qty := -coin
	cost := qty * bar.Close
	fee := cost * s.cfg.FeeRate
	*trades = append(*trades, Trade{Time: bar.Time, Type: TradeBuy, Price: bar.Close, Quantity: qty, Fee: fee})
	// a blown-up short cannot drive cash negative in the report
	return math.Max(cash-cost-fee, 0), 0
}
