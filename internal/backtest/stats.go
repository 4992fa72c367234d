package backtest

import "math"

// StatsConfig holds the assumptions used when summarizing a run.
type StatsConfig struct {
	// RiskFreeRate is the annual risk-free rate used for the Sharpe ratio.
	RiskFreeRate float64
}

const (
	tradingDaysPerYear  = 252
	calendarDaysPerYear = 365
)

// Summarize reduces an equity curve and trade list to aggregate figures.
// Runs too short to measure (fewer than two equity points) produce a zeroed
// summary rather than NaN-poisoned fields.
func Summarize(trades []Trade, equity []EquityPoint, initialCapital float64, cfg StatsConfig) Summary {
	if len(equity) < 2 || initialCapital <= 0 {
		return Summary{}
	}

	first, last := equity[0], equity[len(equity)-1]
	totalDays := last.Time.Sub(first.Time).Hours() / 24

	s := Summary{
		Start:          first.Time,
		End:            last.Time,
		TotalDays:      totalDays,
		InitialCapital: initialCapital,
		FinalCapital:   last.TotalValue,
		TotalReturnPct: (last.TotalValue/initialCapital - 1) * 100,
	}

	if totalDays > 0 && last.TotalValue > 0 {
		growth := math.Pow(last.TotalValue/initialCapital, calendarDaysPerYear/totalDays)
		s.AnnualReturnPct = (growth - 1) * 100
	}

	for _, p := range equity {
		if p.DrawdownPct < s.MaxDrawdownPct {
			s.MaxDrawdownPct = p.DrawdownPct
		}
	}

	s.SharpeRatio = sharpe(equity, cfg.RiskFreeRate)
	s.TradeCount, s.WinRatePct = roundTrips(trades)
	return s
}

// sharpe computes the annualized Sharpe ratio over per-bar returns. A flat
// curve has no variance to reward and scores zero.
func sharpe(equity []EquityPoint, riskFreeRate float64) float64 {
	dailyRF := riskFreeRate / tradingDaysPerYear

	excess := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].TotalValue
		if prev <= 0 {
			continue
		}
		excess = append(excess, equity[i].TotalValue/prev-1-dailyRF)
	}
	if len(excess) < 2 {
		return 0
	}

	var sum float64
	for _, r := range excess {
		sum += r
	}
	mean := sum / float64(len(excess))

	var ss float64
	for _, r := range excess {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(excess)-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// roundTrips pairs entry and exit fills into completed round trips and
// reports how many closed profitably. An open position at the end of the run
// is not counted.
func roundTrips(trades []Trade) (count int, winRatePct float64) {
	var wins int
	var position int // 0 flat, 1 long, -1 short
	var entryFlow float64

	for _, tr := range trades {
		switch position {
		case 0:
			if tr.Type == TradeBuy {
				position = 1
				entryFlow = tr.Price*tr.Quantity + tr.Fee // cost to open long
			} else {
				position = -1
				entryFlow = tr.Price*tr.Quantity - tr.Fee // proceeds from opening short
			}
		case 1:
			if tr.Type != TradeSell {
				continue
			}
			proceeds := tr.Price*tr.Quantity - tr.Fee
			count++
			if proceeds > entryFlow {
				wins++
			}
			position = 0
		case -1:
			if tr.Type != TradeBuy {
				continue
			}
			cost := tr.Price*tr.Quantity + tr.Fee
			count++
			if entryFlow > cost {
				wins++
			}
			position = 0
		}
	}

	if count > 0 {
		winRatePct = float64(wins) / float64(count) * 100
	}
	return count, winRatePct
}
