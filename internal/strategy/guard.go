package strategy

import (
	"fmt"

	"github.com/kairos-quant/kairos/internal/core"
)

// RequireRows fails with core.ErrInsufficientData when the series is shorter
// than min. Every strategy calls this before computing indicators so a short
// input never yields a partial signal series.
func RequireRows(series core.Series, min int) error {
	if len(series) < min {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least %d rows, got %d (try a longer period)", min, len(series)))
	}
	return nil
}
