// Package builtin registers every shipped strategy into a registry. The
// table is explicit: adding a strategy means adding a line here, not naming
// a file in a special way.
package builtin

import (
	"github.com/kairos-quant/kairos/internal/strategy"
	"github.com/kairos-quant/kairos/internal/strategy/bollinger"
	"github.com/kairos-quant/kairos/internal/strategy/buyhold"
	"github.com/kairos-quant/kairos/internal/strategy/doomsday"
	"github.com/kairos-quant/kairos/internal/strategy/macdcross"
	"github.com/kairos-quant/kairos/internal/strategy/rsi"
	"github.com/kairos-quant/kairos/internal/strategy/smacross"
	"go.uber.org/zap"
)

// NewRegistry returns a registry with all built-in strategies registered.
func NewRegistry(logger ...*zap.Logger) *strategy.Registry {
	r := strategy.NewRegistry(logger...)
	for _, def := range []strategy.Definition{
		smacross.Definition(),
		bollinger.Definition(),
		macdcross.Definition(),
		rsi.Definition(),
		doomsday.Definition(),
		buyhold.Definition(),
	} {
		r.Register(def)
	}
	return r
}
