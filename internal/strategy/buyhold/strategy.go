// Package buyhold implements the buy-and-hold benchmark: buy at the first
// row, hold until the series ends.
package buyhold

import (
	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/strategy"
)

const Code = "buyhold"

type Strategy struct{}

// Definition returns the registry entry for the buy-and-hold benchmark.
func Definition() strategy.Definition {
	return strategy.Definition{
		Code:        Code,
		Name:        "Buy & Hold",
		Description: "Buys at the first bar and holds to the end; used as a benchmark",
		Specs:       nil,
		Build: func(strategy.ParamSet) strategy.Strategy {
			return &Strategy{}
		},
	}
}

func (s *Strategy) Name() string { return "Buy & Hold" }

func (s *Strategy) Params() map[string]any { return map[string]any{} }

func (s *Strategy) MinRequiredRows() int { return 2 }

func (s *Strategy) Apply(series core.Series) (core.SignalSeries, error) {
	if err := strategy.RequireRows(series, s.MinRequiredRows()); err != nil {
		return nil, err
	}

	stances := make([]float64, len(series))
	for i := range stances {
		stances[i] = 1
	}
	return strategy.Transitions(series, stances), nil
}
