package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kairos-quant/kairos/internal/core"
)

// CSVProvider reads candle exports from a directory. Each ticker+interval
// pair lives in <dir>/<ticker>_<interval>.csv with a header row of
// time,open,high,low,close,volume and RFC 3339 timestamps.
type CSVProvider struct {
	dir string
}

func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

func (p *CSVProvider) path(ticker, interval string) string {
	return filepath.Join(p.dir, fmt.Sprintf("%s_%s.csv", ticker, interval))
}

func (p *CSVProvider) Fetch(ctx context.Context, ticker, interval string, from, to time.Time) (core.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.path(ticker, interval))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.WrapError(core.ErrDataUnavailable,
				fmt.Errorf("no candle file for %s %s under %s", ticker, interval, p.dir))
		}
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	// header
	if _, err := r.Read(); err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("reading header of %s: %w", p.path(ticker, interval), err))
	}

	var series core.Series
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.WrapError(core.ErrSeriesInvalid,
				fmt.Errorf("line %d: %w", line, err))
		}

		bar, err := parseBar(ticker, interval, record)
		if err != nil {
			return nil, core.WrapError(core.ErrSeriesInvalid,
				fmt.Errorf("line %d: %w", line, err))
		}
		if bar.Time.Before(from) || bar.Time.After(to) {
			continue
		}
		series = append(series, bar)
	}

	if len(series) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no bars for %s %s in [%s, %s]",
				ticker, interval, from.Format(time.RFC3339), to.Format(time.RFC3339)))
	}
	return series, nil
}

func parseBar(ticker, interval string, record []string) (core.OHLCV, error) {
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return core.OHLCV{}, fmt.Errorf("time %q: %w", record[0], err)
	}

	var fields [5]float64
	for i, name := range [5]string{"open", "high", "low", "close", "volume"} {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return core.OHLCV{}, fmt.Errorf("%s %q: %w", name, record[i+1], err)
		}
		fields[i] = v
	}

	return core.OHLCV{
		Ticker:   ticker,
		Interval: interval,
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
		Time:     ts.UTC(),
	}, nil
}
