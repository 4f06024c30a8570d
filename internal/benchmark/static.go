package benchmark

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

//go:embed sectors.yaml
var defaultSectorsYAML []byte

// SectorOverride adjusts the generic baselines for one sector.
// Values take precedence over Multiplier.
type SectorOverride struct {
	Multiplier float64            `yaml:"multiplier"`
	Values     map[string]float64 `yaml:"values"`
}

// Overrides is the sector table loaded from YAML
type Overrides struct {
	Sectors map[string]SectorOverride `yaml:"sectors"`
}

// ParseOverrides decodes a sector override document
func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	if err := yaml.UnmarshalStrict(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("parse sector overrides: %w", err)
	}
	normalized := make(map[string]SectorOverride, len(o.Sectors))
	for name, s := range o.Sectors {
		if s.Multiplier < 0 {
			return Overrides{}, fmt.Errorf("sector %s: multiplier must not be negative", name)
		}
		normalized[NormalizeSector(name)] = s
	}
	o.Sectors = normalized
	return o, nil
}

// LoadOverrides reads a sector override file from disk
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read sector overrides: %w", err)
	}
	return ParseOverrides(data)
}

// DefaultOverrides returns the built-in sector table
func DefaultOverrides() Overrides {
	o, err := ParseOverrides(defaultSectorsYAML)
	if err != nil {
		panic(err)
	}
	return o
}

// Static serves benchmarks from in-memory baselines with sector overrides
type Static struct {
	baselines map[string]float64
	overrides Overrides
}

// NewStatic copies baselines so later changes by the caller are not observed
func NewStatic(baselines map[string]float64, overrides Overrides) *Static {
	b := make(map[string]float64, len(baselines))
	for k, v := range baselines {
		b[k] = v
	}
	return &Static{baselines: b, overrides: overrides}
}

// Benchmark implements Provider
func (s *Static) Benchmark(_ context.Context, key, sector string) (float64, error) {
	sector = NormalizeSector(sector)
	if o, ok := s.overrides.Sectors[sector]; ok {
		if v, ok := o.Values[key]; ok {
			return v, nil
		}
	}
	base, ok := s.baselines[key]
	if !ok {
		return 0, fmt.Errorf("%s/%s: %w", sector, key, ErrNotFound)
	}
	if o, ok := s.overrides.Sectors[sector]; ok && o.Multiplier > 0 {
		return base * o.Multiplier, nil
	}
	return base, nil
}

// Benchmarks implements BatchProvider
func (s *Static) Benchmarks(ctx context.Context, sector string, keys []string) (map[string]float64, error) {
	out := make(map[string]float64, len(keys))
	for _, k := range keys {
		if v, err := s.Benchmark(ctx, k, sector); err == nil {
			out[k] = v
		}
	}
	return out, nil
}

// Sectors lists the sectors that carry overrides
func (s *Static) Sectors() []string {
	out := make([]string, 0, len(s.overrides.Sectors))
	for name := range s.overrides.Sectors {
		out = append(out, name)
	}
	return out
}
