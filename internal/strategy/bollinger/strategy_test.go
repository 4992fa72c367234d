package bollinger

import (
	"errors"
	"testing"
	"time"

	"github.com/kairos-quant/kairos/internal/core"
	"github.com/kairos-quant/kairos/internal/strategy"
)

func seriesOf(closes []float64) core.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(core.Series, len(closes))
	for i, c := range closes {
		s[i] = core.OHLCV{Ticker: "KRW-ETH", Interval: "day", Close: c, Time: base.AddDate(0, 0, i)}
	}
	return s
}

func newStrategy(t *testing.T, params map[string]any) strategy.Strategy {
	t.Helper()
	def := Definition()
	ps, err := strategy.ResolveParams(def.Specs, params)
	if err != nil {
		t.Fatalf("ResolveParams() error = %v", err)
	}
	return def.Build(ps)
}

// A constant price series has zero band width, so the close never leaves the
// bands and the strategy stays silent.
func TestApply_ConstantPriceNeverSignals(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 1000
	}
	s := newStrategy(t, nil)

	signals, err := s.Apply(seriesOf(closes))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	for i, sig := range signals {
		if sig.Direction != core.Hold {
			t.Errorf("signals[%d] = %s, want hold on a flat series", i, sig.Direction)
		}
	}
}

func TestApply_DipBelowLowerBandBuys(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%3) // small noise to open the bands
	}
	closes[25] = 50 // violent dip

	s := newStrategy(t, map[string]any{"window": 20, "num_std": 2.0})
	signals, err := s.Apply(seriesOf(closes))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if signals[25].Direction != core.Buy {
		t.Errorf("signals[25] = %s, want buy below the lower band", signals[25].Direction)
	}
}

func TestApply_InsufficientData(t *testing.T) {
	s := newStrategy(t, nil)
	_, err := s.Apply(seriesOf(make([]float64, 5)))
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}
