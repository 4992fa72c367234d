package backtest

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/kairos-quant/kairos/internal/core"
)

func seriesOf(closes []float64) core.Series {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(core.Series, len(closes))
	for i, c := range closes {
		s[i] = core.OHLCV{Ticker: "KRW-BTC", Interval: "day", Close: c, Time: base.AddDate(0, 0, i)}
	}
	return s
}

func signalsFor(series core.Series, dirs []core.Direction) core.SignalSeries {
	signals := make(core.SignalSeries, len(series))
	for i := range series {
		signals[i] = core.Signal{Time: series[i].Time, Direction: dirs[i], Strength: 1}
	}
	return signals
}

func approx(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func TestRun_HoldOnlyLeavesCashUntouched(t *testing.T) {
	series := seriesOf([]float64{100, 110, 90, 120})
	signals := signalsFor(series, []core.Direction{core.Hold, core.Hold, core.Hold, core.Hold})

	sim := NewSimulator(SimConfig{InitialCapital: 10_000})
	trades, equity, err := sim.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("trades = %d, want 0", len(trades))
	}
	for i, p := range equity {
		if p.TotalValue != 10_000 {
			t.Errorf("equity[%d].TotalValue = %v, want 10000", i, p.TotalValue)
		}
	}
}

func TestRun_RoundTripAtFlatPriceCostsTwoFees(t *testing.T) {
	series := seriesOf([]float64{100, 100, 100})
	signals := signalsFor(series, []core.Direction{core.Buy, core.Hold, core.Sell})

	sim := NewSimulator(SimConfig{InitialCapital: 10_000, FeeRate: 0.002})
	trades, equity, err := sim.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(trades))
	}

	// Buying and selling at the same price loses exactly the two fee legs.
	want := 10_000 * (1 - 0.002) * (1 - 0.002)
	final := equity[len(equity)-1]
	approx(t, final.TotalValue, want, 1e-9, "final equity")
	approx(t, final.Cash, want, 1e-9, "final cash")
	if final.CoinValue != 0 {
		t.Errorf("final coin value = %v, want 0", final.CoinValue)
	}
}

func TestRun_EquityIdentityAndMonotonePeak(t *testing.T) {
	series := seriesOf([]float64{100, 105, 95, 110, 90, 115})
	signals := signalsFor(series, []core.Direction{
		core.Buy, core.Hold, core.Sell, core.Buy, core.Hold, core.Sell,
	})

	sim := NewSimulator(SimConfig{InitialCapital: 10_000})
	_, equity, err := sim.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var prevPeak float64
	for i, p := range equity {
		approx(t, p.TotalValue, p.Cash+p.CoinValue, 1e-9, "cash+coin identity")
		if p.Peak < prevPeak {
			t.Errorf("equity[%d].Peak = %v below previous %v", i, p.Peak, prevPeak)
		}
		if p.DrawdownPct > 0 {
			t.Errorf("equity[%d].DrawdownPct = %v, want <= 0", i, p.DrawdownPct)
		}
		prevPeak = p.Peak
	}
}

func TestRun_RepeatedBuyFollowsReentryPolicy(t *testing.T) {
	series := seriesOf([]float64{100, 100, 100})
	signals := signalsFor(series, []core.Direction{core.Buy, core.Buy, core.Hold})

	ignore := NewSimulator(SimConfig{InitialCapital: 10_000, Reentry: ReentryIgnore})
	trades, _, err := ignore.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 1 {
		t.Errorf("ignore policy trades = %d, want 1", len(trades))
	}

	reenter := NewSimulator(SimConfig{InitialCapital: 10_000, Reentry: ReentryReenter})
	trades, _, err = reenter.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// second buy closes and reopens: entry, exit, entry
	if len(trades) != 3 {
		t.Errorf("reenter policy trades = %d, want 3", len(trades))
	}
}

func TestRun_ShortRoundTripAtFlatPrice(t *testing.T) {
	series := seriesOf([]float64{100, 100, 100})
	signals := signalsFor(series, []core.Direction{core.Sell, core.Hold, core.Buy})

	sim := NewSimulator(SimConfig{InitialCapital: 10_000, FeeRate: 0.002, AllowShort: true})
	trades, equity, err := sim.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("trades = %d, want 2", len(trades))
	}
	if trades[0].Type != TradeSell || trades[1].Type != TradeBuy {
		t.Fatalf("trade types = %v, %v; want sell then buy", trades[0].Type, trades[1].Type)
	}

	// short entry at 100, covered at 100: loses the two fee legs
	final := equity[len(equity)-1]
	approx(t, final.TotalValue, 10_000-2*20, 1e-9, "final equity")
	if final.CoinValue != 0 {
		t.Errorf("final coin value = %v, want flat", final.CoinValue)
	}
}

func TestRun_ShortIgnoredWhenDisabled(t *testing.T) {
	series := seriesOf([]float64{100, 100})
	signals := signalsFor(series, []core.Direction{core.Sell, core.Hold})

	sim := NewSimulator(SimConfig{InitialCapital: 10_000})
	trades, equity, err := sim.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("trades = %d, want 0", len(trades))
	}
	if equity[len(equity)-1].TotalValue != 10_000 {
		t.Errorf("equity changed without a position")
	}
}

func TestRun_EquityFloorAfterCollapse(t *testing.T) {
	series := seriesOf([]float64{100, 0.001})
	signals := signalsFor(series, []core.Direction{core.Buy, core.Hold})

	sim := NewSimulator(SimConfig{InitialCapital: 10_000})
	_, equity, err := sim.Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	floor := 10_000 * 1e-4
	if got := equity[1].TotalValue; got != floor {
		t.Errorf("floored equity = %v, want %v", got, floor)
	}
}

func TestRun_Deterministic(t *testing.T) {
	series := seriesOf([]float64{100, 105, 95, 110, 90, 115, 120, 80})
	signals := signalsFor(series, []core.Direction{
		core.Buy, core.Hold, core.Sell, core.Buy, core.Sell, core.Buy, core.Hold, core.Sell,
	})
	cfg := SimConfig{InitialCapital: 10_000, AllowShort: true}

	t1, e1, err := NewSimulator(cfg).Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	t2, e2, err := NewSimulator(cfg).Run(series, signals)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(t1, t2) {
		t.Error("trades differ between identical runs")
	}
	if !reflect.DeepEqual(e1, e2) {
		t.Error("equity differs between identical runs")
	}
}

func TestRun_LengthMismatch(t *testing.T) {
	series := seriesOf([]float64{100, 100})
	signals := signalsFor(series[:1], []core.Direction{core.Buy})

	_, _, err := NewSimulator(SimConfig{InitialCapital: 10_000}).Run(series, signals)
	if !errors.Is(err, core.ErrSeriesInvalid) {
		t.Errorf("got %v, want ErrSeriesInvalid", err)
	}
}

func TestRun_NonPositiveCapital(t *testing.T) {
	series := seriesOf([]float64{100})
	signals := signalsFor(series, []core.Direction{core.Hold})

	_, _, err := NewSimulator(SimConfig{}).Run(series, signals)
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("got %v, want ErrInvalidParameter", err)
	}
}
