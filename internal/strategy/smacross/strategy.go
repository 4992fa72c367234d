// Package smacross implements the simple moving average crossover strategy:
// long while the short MA sits above the long MA, short stance otherwise.
package smacross

import (
	"math"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/indicator"
	"github.com/kairos-quant/kairos/internal/strategy"
)

const Code = "sma"

// Strategy holds the resolved crossover windows.
type Strategy struct {
	shortWindow int
	longWindow  int
}

// Definition returns the registry entry for the SMA crossover strategy.
func Definition() strategy.Definition {
	return strategy.Definition{
		Code:        Code,
		Name:        "SMA Crossover",
		Description: "Buys when the short moving average crosses above the long one, sells on the reverse cross",
		Specs: []strategy.ParamSpec{
			{Name: "short_window", Type: strategy.ParamInt, Default: 10, Min: 2, Max: 100,
				Description: "Short moving average window"},
			{Name: "long_window", Type: strategy.ParamInt, Default: 30, Min: 5, Max: 500,
				Description: "Long moving average window"},
		},
		Build: func(params strategy.ParamSet) strategy.Strategy {
			return &Strategy{
				shortWindow: params.Int("short_window"),
				longWindow:  params.Int("long_window"),
			}
		},
	}
}

func (s *Strategy) Name() string { return "SMA Crossover" }

func (s *Strategy) Params() map[string]any {
	return map[string]any{
		"short_window": s.shortWindow,
		"long_window":  s.longWindow,
	}
}

// MinRequiredRows needs one row past the long window so a cross can be seen.
func (s *Strategy) MinRequiredRows() int { return s.longWindow + 1 }

func (s *Strategy) Apply(series core.Series) (core.SignalSeries, error) {
	if err := strategy.RequireRows(series, s.MinRequiredRows()); err != nil {
		return nil, err
	}

	closes := series.Closes()
	short := indicator.SMA(closes, s.shortWindow)
	long := indicator.SMA(closes, s.longWindow)

	stances := make([]float64, len(series))
	for i := range series {
		switch {
		case math.IsNaN(short[i]) || math.IsNaN(long[i]):
			stances[i] = math.NaN()
		case short[i] > long[i]:
			stances[i] = 1
		case short[i] < long[i]:
			stances[i] = -1
		}
	}
	return strategy.Transitions(series, stances), nil
}
