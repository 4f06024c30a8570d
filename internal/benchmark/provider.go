package benchmark

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a provider has no value for a key
var ErrNotFound = errors.New("benchmark not found")

// GeneralSector is the sector name used when cross-industry values are requested
const GeneralSector = "general"

// Provider supplies the industry benchmark for one analysis key
type Provider interface {
	Benchmark(ctx context.Context, key, sector string) (float64, error)
}

// BatchProvider resolves many keys in one round trip.
// Keys without a value are simply absent from the returned map.
type BatchProvider interface {
	Provider
	Benchmarks(ctx context.Context, sector string, keys []string) (map[string]float64, error)
}

// NormalizeSector lower-cases a sector name and maps empty to GeneralSector
func NormalizeSector(sector string) string {
	s := strings.ToLower(strings.TrimSpace(sector))
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return GeneralSector
	}
	return s
}

// Table is the per-run memo of resolved benchmarks. It is read-only after Resolve.
type Table struct {
	sector  string
	values  map[string]float64
	missing map[string]bool
	err     error
}

// Lookup returns the benchmark for key; ok is false when it could not be resolved
func (t *Table) Lookup(key string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.values[key]
	return v, ok
}

// Sector returns the normalized sector the table was resolved for
func (t *Table) Sector() string {
	return t.sector
}

// Missing returns the number of keys that fell through
func (t *Table) Missing() int {
	return len(t.missing)
}

// Err returns the provider failures other than ErrNotFound, joined
func (t *Table) Err() error {
	return t.err
}

// Resolve looks up every key once for the given sector.
// ErrNotFound and provider failures both leave the key missing; only context
// cancellation is returned as an error.
func Resolve(ctx context.Context, p Provider, sector string, keys []string) (*Table, error) {
	t := &Table{
		sector:  NormalizeSector(sector),
		values:  make(map[string]float64, len(keys)),
		missing: make(map[string]bool),
	}

	unique := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, k)
	}
	if p == nil {
		for _, k := range unique {
			t.missing[k] = true
		}
		return t, nil
	}

	if bp, ok := p.(BatchProvider); ok {
		values, err := bp.Benchmarks(ctx, t.sector, unique)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			t.err = fmt.Errorf("batch lookup for sector %s: %w", t.sector, err)
		}
		for _, k := range unique {
			if v, ok := values[k]; ok {
				t.values[k] = v
			} else {
				t.missing[k] = true
			}
		}
		return t, nil
	}

	var errs []error
	for _, k := range unique {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := p.Benchmark(ctx, k, t.sector)
		switch {
		case err == nil:
			t.values[k] = v
		case errors.Is(err, ErrNotFound):
			t.missing[k] = true
		default:
			t.missing[k] = true
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	}
	t.err = errors.Join(errs...)
	return t, nil
}

// Chain asks each provider in turn; the first that answers wins
type Chain []Provider

// Benchmark implements Provider
func (c Chain) Benchmark(ctx context.Context, key, sector string) (float64, error) {
	var errs []error
	for _, p := range c {
		v, err := p.Benchmark(ctx, key, sector)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}
	return 0, fmt.Errorf("%s/%s: %w", sector, key, ErrNotFound)
}

// Benchmarks implements BatchProvider. Keys missing from an earlier provider are
// asked of the next one; a failing provider is skipped.
func (c Chain) Benchmarks(ctx context.Context, sector string, keys []string) (map[string]float64, error) {
	out := make(map[string]float64, len(keys))
	pending := keys
	var errs []error
	for _, p := range c {
		if len(pending) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		found, err := lookupAll(ctx, p, sector, pending)
		if err != nil {
			errs = append(errs, err)
		}
		next := pending[:0:0]
		for _, k := range pending {
			if v, ok := found[k]; ok {
				out[k] = v
			} else {
				next = append(next, k)
			}
		}
		pending = next
	}
	// Failures only matter when something is still unresolved
	if len(pending) > 0 && len(errs) > 0 {
		return out, errors.Join(errs...)
	}
	return out, nil
}

// lookupAll resolves keys against p using the batch form when available
func lookupAll(ctx context.Context, p Provider, sector string, keys []string) (map[string]float64, error) {
	if bp, ok := p.(BatchProvider); ok {
		return bp.Benchmarks(ctx, sector, keys)
	}
	out := make(map[string]float64, len(keys))
	var errs []error
	for _, k := range keys {
		v, err := p.Benchmark(ctx, k, sector)
		switch {
		case err == nil:
			out[k] = v
		case !errors.Is(err, ErrNotFound):
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}
