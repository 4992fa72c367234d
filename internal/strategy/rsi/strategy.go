// Package rsi implements a stateful RSI strategy: it enters long below the
// oversold level and exits above exit_oversold, enters short above the
// overbought level and exits below exit_overbought. Each timestamp the
// position is one of {none, long, short}.
package rsi

import (
	"math"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/indicator"
	"github.com/kairos-quant/kairos/internal/strategy"
)

const Code = "rsi"

type Strategy struct {
	window         int
	overbought     float64
	oversold       float64
	exitOverbought float64
	exitOversold   float64
}

// Definition returns the registry entry for the RSI strategy.
func Definition() strategy.Definition {
	return strategy.Definition{
		Code:        Code,
		Name:        "RSI Reversion",
		Description: "Enters long in oversold territory and short in overbought territory, with separate exit levels",
		Specs: []strategy.ParamSpec{
			{Name: "window", Type: strategy.ParamInt, Default: 14, Min: 2, Max: 50,
				Description: "RSI period"},
			{Name: "overbought", Type: strategy.ParamFloat, Default: 65, Min: 50, Max: 90,
				Description: "Short entry level"},
			{Name: "oversold", Type: strategy.ParamFloat, Default: 35, Min: 10, Max: 50,
				Description: "Long entry level"},
			{Name: "exit_overbought", Type: strategy.ParamFloat, Default: 55, Min: 40, Max: 60,
				Description: "Short exit level"},
			{Name: "exit_oversold", Type: strategy.ParamFloat, Default: 45, Min: 40, Max: 60,
				Description: "Long exit level"},
		},
		Build: func(params strategy.ParamSet) strategy.Strategy {
			return &Strategy{
				window:         params.Int("window"),
				overbought:     params.Float("overbought"),
				oversold:       params.Float("oversold"),
				exitOverbought: params.Float("exit_overbought"),
				exitOversold:   params.Float("exit_oversold"),
			}
		},
	}
}

func (s *Strategy) Name() string { return "RSI Reversion" }

func (s *Strategy) Params() map[string]any {
	return map[string]any{
		"window":          s.window,
		"overbought":      s.overbought,
		"oversold":        s.oversold,
		"exit_overbought": s.exitOverbought,
		"exit_oversold":   s.exitOversold,
	}
}

// MinRequiredRows leaves trading room past the RSI warm-up.
func (s *Strategy) MinRequiredRows() int { return s.window + 10 }

func (s *Strategy) Apply(series core.Series) (core.SignalSeries, error) {
	if err := strategy.RequireRows(series, s.MinRequiredRows()); err != nil {
		return nil, err
	}

	values := indicator.RSI(series.Closes(), s.window)

	stances := make([]float64, len(series))
	position := 0.0

	for i := range series {
		v := values[i]
		if math.IsNaN(v) {
			stances[i] = math.NaN()
			continue
		}

		switch position {
		case 0:
			if v < s.oversold {
				position = 1
			} else if v > s.overbought {
				position = -1
			}
		case 1:
			if v > s.exitOversold {
				position = 0
				if v > s.overbought {
					position = -1
				}
			}
		case -1:
			if v < s.exitOverbought {
				position = 0
				if v < s.oversold {
					position = 1
				}
			}
		}
		stances[i] = position
	}
	return strategy.Transitions(series, stances), nil
}
