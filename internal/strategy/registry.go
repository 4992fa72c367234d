package strategy

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kairos-quant/kairos/internal/core"
)

// Factory builds a strategy instance from a resolved parameter set.
type Factory func(params ParamSet) Strategy

// Definition binds a strategy code to its metadata, parameter schema and
// factory. Registration is explicit at startup; there is no file or package
// scanning.
type Definition struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Specs       []ParamSpec `json:"params"`
	Build       Factory     `json:"-"`
}

// Registry maps strategy codes to definitions.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]Definition
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger ...*zap.Logger) *Registry {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Registry{
		defs:   make(map[string]Definition),
		logger: l,
	}
}

// Register adds a definition, replacing any previous one with the same code.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Code]; exists {
		r.logger.Warn("replacing strategy definition", zap.String("code", def.Code))
	}
	r.defs[def.Code] = def
}

// Definitions returns all registered definitions sorted by code.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Get returns the definition for a code.
func (r *Registry) Get(code string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[code]
	return def, ok
}

// New builds a strategy for the given code, validating supplied parameters
// against the definition's specs. An unregistered code fails with
// core.ErrUnknownStrategy; there is no fallback strategy.
func (r *Registry) New(code string, params map[string]any) (Strategy, error) {
	def, ok := r.Get(code)
	if !ok {
		return nil, core.WrapError(core.ErrUnknownStrategy, fmt.Errorf("code %q", code))
	}
	resolved, err := ResolveParams(def.Specs, params)
	if err != nil {
		return nil, err
	}
	return def.Build(resolved), nil
}
