package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "exports")

	cfg := Default()
	cfg.Paths.ExecutableDir = base
	cfg.Paths.ExportsDir = abs

	paths := cfg.ResolvedPaths()
	assert.Equal(t, base, paths.ExecutableDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, abs, paths.ExportsDir, "absolute paths are kept")
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(abs, "r.csv"), paths.GetExportPath("r.csv"))
	assert.Equal(t, filepath.Join(base, "logs", "app.log"), paths.GetLogPath("app.log"))
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Paths.ExecutableDir = t.TempDir()
	paths := cfg.ResolvedPaths()

	require.NoError(t, paths.EnsureDirectories())
	assert.True(t, FileExists(paths.DataDir))
	assert.True(t, FileExists(paths.ExportsDir))
	assert.True(t, FileExists(paths.LogsDir))
}

func TestResolvePathsUsesExecutable(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.resolvePaths())
	assert.True(t, filepath.IsAbs(cfg.Paths.ExecutableDir))

	cfg.Paths.ExecutableDir = "/opt/finanalytics"
	require.NoError(t, cfg.resolvePaths())
	assert.Equal(t, "/opt/finanalytics", cfg.Paths.ExecutableDir)
}

func TestExportFileName(t *testing.T) {
	date := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		company string
		ext     string
		want    string
	}{
		{"Baghdad Soft Drinks", "xlsx", "baghdad_soft_drinks_20250331.xlsx"},
		{"  Asia-Cell (IQ)  ", ".csv", "asia_cell_iq_20250331.csv"},
		{"مصرف بغداد", "json", "report_20250331.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExportFileName(tt.company, date, tt.ext))
	}
}
