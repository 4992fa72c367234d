package strategy

import (
	"fmt"
	"math"

	"github.com/kairos-quant/kairos/internal/core"
)

// ParamType is the declared type of a strategy parameter.
type ParamType string

const (
	ParamInt   ParamType = "int"
	ParamFloat ParamType = "float"
)

// ParamSpec declares one strategy parameter: its type, default and bounds.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Default     float64   `json:"default"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Description string    `json:"description"`
}

// ParamSet is a validated parameter mapping conforming to a spec list.
type ParamSet map[string]float64

// Int returns the named parameter as an int.
func (p ParamSet) Int(name string) int { return int(p[name]) }

// Float returns the named parameter as a float64.
func (p ParamSet) Float(name string) float64 { return p[name] }

// Map returns the set as a generic map, ints rendered as ints.
// Used for Strategy.Params and cache key parts.
func (p ParamSet) Map(specs []ParamSpec) map[string]any {
	out := make(map[string]any, len(p))
	for _, spec := range specs {
		v, ok := p[spec.Name]
		if !ok {
			continue
		}
		if spec.Type == ParamInt {
			out[spec.Name] = int(v)
		} else {
			out[spec.Name] = v
		}
	}
	return out
}

// ResolveParams validates supplied values against the specs, fills defaults
// for missing names and drops unknown keys. Values outside a spec's declared
// bounds, or non-integral values for int parameters, fail with
// core.ErrInvalidParameter.
func ResolveParams(specs []ParamSpec, supplied map[string]any) (ParamSet, error) {
	resolved := make(ParamSet, len(specs))
	for _, spec := range specs {
		value := spec.Default
		if raw, ok := supplied[spec.Name]; ok {
			v, err := toFloat(raw)
			if err != nil {
				return nil, core.WrapError(core.ErrInvalidParameter,
					fmt.Errorf("%s: %w", spec.Name, err))
			}
			value = v
		}
		if spec.Type == ParamInt && value != math.Trunc(value) {
			return nil, core.WrapError(core.ErrInvalidParameter,
				fmt.Errorf("%s: expected integer, got %v", spec.Name, value))
		}
		if value < spec.Min || value > spec.Max {
			return nil, core.WrapError(core.ErrInvalidParameter,
				fmt.Errorf("%s: %v outside [%v, %v]", spec.Name, value, spec.Min, spec.Max))
		}
		resolved[spec.Name] = value
	}
	return resolved, nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}
