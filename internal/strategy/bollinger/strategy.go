// Package bollinger implements a band-reversion strategy: long below the
// lower band, short stance above the upper band, flat inside the bands.
package bollinger

import (
	"math"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/indicator"
	"github.com/kairos-quant/kairos/internal/strategy"
)

const Code = "bb"

type Strategy struct {
	window int
	numStd float64
}

// Definition returns the registry entry for the Bollinger band strategy.
func Definition() strategy.Definition {
	return strategy.Definition{
		Code:        Code,
		Name:        "Bollinger Bands",
		Description: "Buys when price drops below the lower band, sells when it rises above the upper band",
		Specs: []strategy.ParamSpec{
			{Name: "window", Type: strategy.ParamInt, Default: 20, Min: 5, Max: 200,
				Description: "Moving average window"},
			{Name: "num_std", Type: strategy.ParamFloat, Default: 2.0, Min: 0.5, Max: 4.0,
				Description: "Standard deviation multiplier"},
		},
		Build: func(params strategy.ParamSet) strategy.Strategy {
			return &Strategy{
				window: params.Int("window"),
				numStd: params.Float("num_std"),
			}
		},
	}
}

func (s *Strategy) Name() string { return "Bollinger Bands" }

func (s *Strategy) Params() map[string]any {
	return map[string]any{
		"window":  s.window,
		"num_std": s.numStd,
	}
}

func (s *Strategy) MinRequiredRows() int { return s.window + 1 }

func (s *Strategy) Apply(series core.Series) (core.SignalSeries, error) {
	if err := strategy.RequireRows(series, s.MinRequiredRows()); err != nil {
		return nil, err
	}

	closes := series.Closes()
	_, upper, lower := indicator.Bollinger(closes, s.window, s.numStd)

	stances := make([]float64, len(series))
	for i := range series {
		switch {
		case math.IsNaN(upper[i]) || math.IsNaN(lower[i]):
			stances[i] = math.NaN()
		case closes[i] < lower[i]:
			stances[i] = 1
		case closes[i] > upper[i]:
			stances[i] = -1
		}
	}
	return strategy.Transitions(series, stances), nil
}
