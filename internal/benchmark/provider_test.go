package benchmark

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider answers from a map and records every call
type countingProvider struct {
	values map[string]float64
	fail   map[string]error
	calls  map[string]int
}

func newCountingProvider(values map[string]float64) *countingProvider {
	return &countingProvider{values: values, fail: map[string]error{}, calls: map[string]int{}}
}

func (p *countingProvider) Benchmark(_ context.Context, key, _ string) (float64, error) {
	p.calls[key]++
	if err, ok := p.fail[key]; ok {
		return 0, err
	}
	v, ok := p.values[key]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

// brokenBatch fails every batch lookup
type brokenBatch struct{}

func (brokenBatch) Benchmark(context.Context, string, string) (float64, error) {
	return 0, errors.New("connection refused")
}

func (brokenBatch) Benchmarks(context.Context, string, []string) (map[string]float64, error) {
	return nil, errors.New("connection refused")
}

func TestNormalizeSector(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", GeneralSector},
		{"  ", GeneralSector},
		{"Banking", "banking"},
		{"Real Estate", "real_estate"},
		{" retail ", "retail"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSector(tt.in))
		})
	}
}

func TestResolveMemoizesEachKeyOnce(t *testing.T) {
	p := newCountingProvider(map[string]float64{"current_ratio": 2, "quick_ratio": 1})

	table, err := Resolve(context.Background(), p, "Banking", []string{"current_ratio", "quick_ratio", "current_ratio", "unknown"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls["current_ratio"])
	assert.Equal(t, 1, p.calls["unknown"])
	assert.Equal(t, "banking", table.Sector())

	v, ok := table.Lookup("current_ratio")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = table.Lookup("unknown")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Missing())
	assert.NoError(t, table.Err(), "not found is not a provider failure")
}

func TestResolveRecordsProviderFailures(t *testing.T) {
	p := newCountingProvider(map[string]float64{"current_ratio": 2})
	p.fail["debt_ratio"] = errors.New("timeout")

	table, err := Resolve(context.Background(), p, "", []string{"current_ratio", "debt_ratio"})
	require.NoError(t, err)

	_, ok := table.Lookup("debt_ratio")
	assert.False(t, ok)
	assert.Error(t, table.Err())
	assert.Contains(t, table.Err().Error(), "debt_ratio")
}

func TestResolveBatchFailureMarksEverythingMissing(t *testing.T) {
	table, err := Resolve(context.Background(), brokenBatch{}, "retail", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Missing())
	assert.Error(t, table.Err())
}

func TestResolveNilProvider(t *testing.T) {
	table, err := Resolve(context.Background(), nil, "retail", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Missing())
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table, err := Resolve(ctx, newCountingProvider(nil), "", []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, table)
}

func TestNilTableLookup(t *testing.T) {
	var table *Table
	_, ok := table.Lookup("x")
	assert.False(t, ok)
}

func TestChain(t *testing.T) {
	primary := newCountingProvider(map[string]float64{"current_ratio": 1.5})
	fallback := newCountingProvider(map[string]float64{"current_ratio": 2, "quick_ratio": 1})
	chain := Chain{primary, fallback}
	ctx := context.Background()

	t.Run("first provider wins", func(t *testing.T) {
		v, err := chain.Benchmark(ctx, "current_ratio", "")
		require.NoError(t, err)
		assert.Equal(t, 1.5, v)
	})

	t.Run("falls through on not found", func(t *testing.T) {
		v, err := chain.Benchmark(ctx, "quick_ratio", "")
		require.NoError(t, err)
		assert.Equal(t, 1.0, v)
	})

	t.Run("not found everywhere", func(t *testing.T) {
		_, err := chain.Benchmark(ctx, "cash_ratio", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("batch fills gaps from later providers", func(t *testing.T) {
		got, err := chain.Benchmarks(ctx, "", []string{"current_ratio", "quick_ratio", "cash_ratio"})
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"current_ratio": 1.5, "quick_ratio": 1}, got)
	})

	t.Run("failing provider is skipped", func(t *testing.T) {
		c := Chain{brokenBatch{}, fallback}
		got, err := c.Benchmarks(ctx, "", []string{"quick_ratio"})
		require.NoError(t, err)
		assert.Equal(t, 1.0, got["quick_ratio"])

		v, err := c.Benchmark(ctx, "quick_ratio", "")
		require.NoError(t, err)
		assert.Equal(t, 1.0, v)
	})

	t.Run("failure reported when keys stay unresolved", func(t *testing.T) {
		c := Chain{brokenBatch{}}
		_, err := c.Benchmarks(ctx, "", []string{"quick_ratio"})
		assert.Error(t, err)
	})
}
