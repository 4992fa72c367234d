package strategy

import (
	"math"

	"github.com/kairos-quant/kairos/internal/core"
)

// Stances are the per-row desired positions a strategy computes before
// signals are derived: positive for long, negative for short, zero for flat.
// NaN marks rows where the required indicators are undefined; those rows
// never generate a signal. The magnitude of a non-zero stance is carried as
// the signal strength.
//
// Transitions converts stances into one Signal per row:
//   - a signal fires only where the stance changes (the diff model);
//   - the first valid non-zero stance is always an entry, even though there
//     is no prior value to diff against;
//   - a change back to zero is an exit, directed opposite to the previous
//     stance.
func Transitions(series core.Series, stances []float64) core.SignalSeries {
	signals := make(core.SignalSeries, len(series))
	prev := math.NaN()

	for i := range series {
		sig := core.Signal{Time: series[i].Time, Direction: core.Hold}
		st := stances[i]

		switch {
		case math.IsNaN(st):
			// indicator warm-up, no signal
		case math.IsNaN(prev):
			if st != 0 {
				sig = entrySignal(series[i], st)
			}
			prev = st
		case st != prev:
			switch {
			case st > 0:
				sig = core.Signal{Time: series[i].Time, Direction: core.Buy, Strength: st}
			case st < 0:
				sig = core.Signal{Time: series[i].Time, Direction: core.Sell, Strength: -st}
			default: // exit to flat
				if prev > 0 {
					sig = core.Signal{Time: series[i].Time, Direction: core.Sell, Strength: prev}
				} else {
					sig = core.Signal{Time: series[i].Time, Direction: core.Buy, Strength: -prev}
				}
			}
			prev = st
		}

		signals[i] = sig
	}
	return signals
}

func entrySignal(bar core.OHLCV, stance float64) core.Signal {
	if stance > 0 {
		return core.Signal{Time: bar.Time, Direction: core.Buy, Strength: stance}
	}
	return core.Signal{Time: bar.Time, Direction: core.Sell, Strength: -stance}
}
