// Package macdcross implements the MACD/signal-line crossover strategy with
// two optional noise filters: a minimum crossover strength and a minimum
// holding period after each flip.
package macdcross

import (
	"math"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/indicator"
	"github.com/kairos-quant/kairos/internal/strategy"
)

const Code = "macd"

type Strategy struct {
	fastPeriod       int
	slowPeriod       int
	signalPeriod     int
	minCrossStrength float64
	minHoldingPeriod int
}

// Definition returns the registry entry for the MACD crossover strategy.
func Definition() strategy.Definition {
	return strategy.Definition{
		Code:        Code,
		Name:        "MACD Crossover",
		Description: "Buys when the MACD line crosses above its signal line, sells on the reverse cross",
		Specs: []strategy.ParamSpec{
			{Name: "fast_period", Type: strategy.ParamInt, Default: 12, Min: 2, Max: 100,
				Description: "Fast EMA period"},
			{Name: "slow_period", Type: strategy.ParamInt, Default: 26, Min: 5, Max: 300,
				Description: "Slow EMA period"},
			{Name: "signal_period", Type: strategy.ParamInt, Default: 9, Min: 2, Max: 100,
				Description: "Signal line EMA period"},
			{Name: "min_cross_strength", Type: strategy.ParamFloat, Default: 0, Min: 0, Max: 1e9,
				Description: "Minimum |MACD - signal| for a flip to count"},
			{Name: "min_holding_period", Type: strategy.ParamInt, Default: 0, Min: 0, Max: 1000,
				Description: "Bars to hold a position before the next flip"},
		},
		Build: func(params strategy.ParamSet) strategy.Strategy {
			return &Strategy{
				fastPeriod:       params.Int("fast_period"),
				slowPeriod:       params.Int("slow_period"),
				signalPeriod:     params.Int("signal_period"),
				minCrossStrength: params.Float("min_cross_strength"),
				minHoldingPeriod: params.Int("min_holding_period"),
			}
		},
	}
}

func (s *Strategy) Name() string { return "MACD Crossover" }

func (s *Strategy) Params() map[string]any {
	return map[string]any{
		"fast_period":        s.fastPeriod,
		"slow_period":        s.slowPeriod,
		"signal_period":      s.signalPeriod,
		"min_cross_strength": s.minCrossStrength,
		"min_holding_period": s.minHoldingPeriod,
	}
}

func (s *Strategy) MinRequiredRows() int { return s.slowPeriod + s.signalPeriod }

func (s *Strategy) Apply(series core.Series) (core.SignalSeries, error) {
	if err := strategy.RequireRows(series, s.MinRequiredRows()); err != nil {
		return nil, err
	}

	closes := series.Closes()
	macd, signalLine, hist := indicator.MACD(closes, s.fastPeriod, s.slowPeriod, s.signalPeriod)

	stances := make([]float64, len(series))
	current := math.NaN() // stance currently held
	held := 0             // bars since the last flip

	for i := range series {
		if math.IsNaN(macd[i]) || math.IsNaN(signalLine[i]) {
			stances[i] = math.NaN()
			continue
		}

		raw := 0.0
		if macd[i] > signalLine[i] {
			raw = 1
		} else if macd[i] < signalLine[i] {
			raw = -1
		}

		if math.IsNaN(current) {
			current = raw
			stances[i] = current
			continue
		}

		held++
		if raw != current {
			weak := math.Abs(hist[i]) < s.minCrossStrength
			early := held < s.minHoldingPeriod
			if !weak && !early {
				current = raw
				held = 0
			}
		}
		stances[i] = current
	}
	return strategy.Transitions(series, stances), nil
}
