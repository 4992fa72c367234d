package backtest

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/kairos-quant/kairos/internal/core"
)

var periodPattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParsePeriod converts a lookback expression like "90d", "12w", "6m" or "1y"
// into the start of the window ending at now.
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	m := periodPattern.FindStringSubmatch(period)
	if m == nil {
		return time.Time{}, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("period %q: want <number><d|w|m|y>", period))
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return time.Time{}, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("period %q: count must be a positive integer", period))
	}

	switch m[2] {
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "w":
		return now.AddDate(0, 0, -7*n), nil
	case "m":
		return now.AddDate(0, -n, 0), nil
	default: // y
		return now.AddDate(-n, 0, 0), nil
	}
}
