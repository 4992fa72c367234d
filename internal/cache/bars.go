package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/kairos-quant/kairos/internal/core"
)

// barRecord is the Parquet schema for cached bar data.
type barRecord struct {
	Ticker    string  `parquet:"ticker"`
	Interval  string  `parquet:"interval"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// EncodeBars serializes a series to Parquet bytes.
func EncodeBars(series core.Series) ([]byte, error) {
	records := make([]barRecord, len(series))
	for i, bar := range series {
		records[i] = barRecord{
			Ticker:    bar.Ticker,
			Interval:  bar.Interval,
			Timestamp: bar.Time.UnixMilli(),
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
		}
	}

	var buf bytes.Buffer
	if err := parquet.Write[barRecord](&buf, records); err != nil {
		return nil, fmt.Errorf("encoding bars: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBars deserializes Parquet bytes back into a series.
func DecodeBars(data []byte) (core.Series, error) {
	records, err := parquet.Read[barRecord](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decoding bars: %w", err)
	}

	series := make(core.Series, len(records))
	for i, r := range records {
		series[i] = core.OHLCV{
			Ticker:   r.Ticker,
			Interval: r.Interval,
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			Volume:   r.Volume,
			Time:     time.UnixMilli(r.Timestamp).UTC(),
		}
	}
	return series, nil
}

// SaveBars stores a series as a Parquet payload.
func (s *Store) SaveBars(ctx context.Context, parts map[string]any, series core.Series, ttl time.Duration) error {
	data, err := EncodeBars(series)
	if err != nil {
		return err
	}
	return s.Save(ctx, parts, "parquet", data, ttl)
}

// LoadBars reads a cached series, if present and fresh. A payload that no
// longer decodes is a miss.
func (s *Store) LoadBars(ctx context.Context, parts map[string]any, maxAge time.Duration) (core.Series, bool) {
	data, ok := s.Load(ctx, parts, "parquet", maxAge)
	if !ok {
		return nil, false
	}
	series, err := DecodeBars(data)
	if err != nil {
		s.logger.Debug("cached bars corrupt, treating as miss", zap.Error(err))
		return nil, false
	}
	return series, true
}
