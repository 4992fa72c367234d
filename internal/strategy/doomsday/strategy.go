// Package doomsday implements the long-horizon moving average cross: a
// golden cross of the mid MA above the long MA buys, a death cross sells
// with a configurable strength.
package doomsday

import (
	"math"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/indicator"
	"github.com/kairos-quant/kairos/internal/strategy"
)

const Code = "doomsday"

type Strategy struct {
	midWindow    int
	longWindow   int
	sellStrength float64
}

// Definition returns the registry entry for the doomsday cross strategy.
func Definition() strategy.Definition {
	return strategy.Definition{
		Code:        Code,
		Name:        "Doomsday Cross",
		Description: "Trades golden/death crosses of the mid and long moving averages; death crosses carry a configurable sell strength",
		Specs: []strategy.ParamSpec{
			{Name: "mid_window", Type: strategy.ParamInt, Default: 50, Min: 20, Max: 100,
				Description: "Mid moving average window"},
			{Name: "long_window", Type: strategy.ParamInt, Default: 200, Min: 100, Max: 500,
				Description: "Long moving average window"},
			{Name: "sell_strength", Type: strategy.ParamFloat, Default: 1.0, Min: 1.0, Max: 3.0,
				Description: "Strength attached to death-cross sell signals"},
		},
		Build: func(params strategy.ParamSet) strategy.Strategy {
			return &Strategy{
				midWindow:    params.Int("mid_window"),
				longWindow:   params.Int("long_window"),
				sellStrength: params.Float("sell_strength"),
			}
		},
	}
}

func (s *Strategy) Name() string { return "Doomsday Cross" }

func (s *Strategy) Params() map[string]any {
	return map[string]any{
		"mid_window":    s.midWindow,
		"long_window":   s.longWindow,
		"sell_strength": s.sellStrength,
	}
}

// MinRequiredRows leaves room for at least one cross past the long window.
func (s *Strategy) MinRequiredRows() int { return s.longWindow + 20 }

func (s *Strategy) Apply(series core.Series) (core.SignalSeries, error) {
	if err := strategy.RequireRows(series, s.MinRequiredRows()); err != nil {
		return nil, err
	}

	closes := series.Closes()
	mid := indicator.SMA(closes, s.midWindow)
	long := indicator.SMA(closes, s.longWindow)

	stances := make([]float64, len(series))
	for i := range series {
		switch {
		case math.IsNaN(mid[i]) || math.IsNaN(long[i]):
			stances[i] = math.NaN()
		case mid[i] > long[i]:
			stances[i] = 1
		case mid[i] < long[i]:
			stances[i] = -s.sellStrength
		}
	}
	return strategy.Transitions(series, stances), nil
}
