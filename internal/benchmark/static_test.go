package benchmark

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBaselines = map[string]float64{
	"current_ratio":     2.0,
	"net_profit_margin": 10,
	"debt_ratio":        50,
}

func TestStaticBenchmark(t *testing.T) {
	overrides, err := ParseOverrides([]byte(`
sectors:
  Banking:
    values:
      current_ratio: 1.1
  Heavy Industry:
    multiplier: 1.5
`))
	require.NoError(t, err)
	s := NewStatic(testBaselines, overrides)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		sector  string
		want    float64
		wantErr error
	}{
		{name: "generic baseline", key: "current_ratio", sector: "", want: 2.0},
		{name: "sector value", key: "current_ratio", sector: "banking", want: 1.1},
		{name: "sector without value uses baseline", key: "debt_ratio", sector: "banking", want: 50},
		{name: "sector multiplier", key: "net_profit_margin", sector: "heavy industry", want: 15},
		{name: "unknown sector uses baseline", key: "net_profit_margin", sector: "mining", want: 10},
		{name: "unknown key", key: "nope", sector: "", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Benchmark(ctx, tt.key, tt.sector)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStaticCopiesBaselines(t *testing.T) {
	base := map[string]float64{"current_ratio": 2}
	s := NewStatic(base, Overrides{})
	base["current_ratio"] = 99

	v, err := s.Benchmark(context.Background(), "current_ratio", "")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestStaticBatchSkipsUnknownKeys(t *testing.T) {
	s := NewStatic(testBaselines, Overrides{})
	got, err := s.Benchmarks(context.Background(), "", []string{"current_ratio", "nope"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"current_ratio": 2}, got)
}

func TestParseOverridesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative multiplier", "sectors:\n  retail:\n    multiplier: -1\n"},
		{"unknown field", "sectors:\n  retail:\n    factor: 2\n"},
		{"malformed", "sectors: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOverrides([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sectors:\n  retail:\n    values:\n      current_ratio: 1.3\n"), 0o644))

	o, err := LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, 1.3, o.Sectors["retail"].Values["current_ratio"])

	_, err = LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultOverridesLoad(t *testing.T) {
	o := DefaultOverrides()
	assert.Contains(t, o.Sectors, "banking")
	assert.Contains(t, o.Sectors, "real_estate")

	s := NewStatic(testBaselines, o)
	assert.NotEmpty(t, s.Sectors())
}
