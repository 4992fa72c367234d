package strategy

import (
	"github.com/kairos-quant/kairos/internal/core"
)

// Strategy turns an OHLCV series into one signal per timestamp.
type Strategy interface {
	// Name returns a short human-readable strategy name.
	Name() string

	// Params returns the resolved parameter values the instance was built with.
	Params() map[string]any

	// MinRequiredRows is the minimum series length Apply accepts. Shorter
	// input fails with core.ErrInsufficientData.
	MinRequiredRows() int

	// Apply derives the signal series. The input is never mutated and the
	// output has exactly one Signal per input row.
	Apply(series core.Series) (core.SignalSeries, error)
}
