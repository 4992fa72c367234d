package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single candlestick/bar.
type OHLCV struct {
	Ticker   string    `json:"ticker"`
	Interval string    `json:"interval"` // "minute60", "day", ...
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	Time     time.Time `json:"time"`
}

// Series is an ordered sequence of bars, strictly increasing by timestamp.
// A Series is treated as immutable once produced.
type Series []OHLCV

// Validate checks ordering and basic sanity of the series.
func (s Series) Validate() error {
	for i, bar := range s {
		if bar.Close <= 0 || math.IsNaN(bar.Close) {
			return WrapError(ErrSeriesInvalid, fmt.Errorf("row %d: non-positive close %v", i, bar.Close))
		}
		if i > 0 && !bar.Time.After(s[i-1].Time) {
			return WrapError(ErrSeriesInvalid, fmt.Errorf("row %d: timestamp %s not after %s", i, bar.Time, s[i-1].Time))
		}
	}
	return nil
}

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// Fingerprint returns a stable content hash of the series. The encoding is
// fixed-width binary so the same data always hashes the same regardless of
// how it was loaded.
func (s Series) Fingerprint() string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, bar := range s {
		binary.BigEndian.PutUint64(buf, uint64(bar.Time.UnixMilli()))
		h.Write(buf)
		for _, v := range [5]float64{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume} {
			binary.BigEndian.PutUint64(buf, math.Float64bits(v))
			h.Write(buf)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Direction is the directional instruction carried by a signal.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
	Hold Direction = "hold"
)

// Signal is a directional trading instruction at one timestamp.
// Strength defaults to 1 for non-hold signals; strategies may raise it to
// mark high-conviction signals.
type Signal struct {
	Time      time.Time `json:"time"`
	Direction Direction `json:"direction"`
	Strength  float64   `json:"strength,omitempty"`
}

// SignalSeries carries exactly one Signal per OHLCV timestamp.
type SignalSeries []Signal
