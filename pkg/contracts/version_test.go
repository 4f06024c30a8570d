package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, "v1", info.ReportFormat)
	assert.Equal(t, "v1", info.APIVersion)
}

func TestVersionStrings(t *testing.T) {
	assert.Equal(t, "finanalytics v"+Version, GetVersionString())

	full := GetFullVersionString()
	assert.Contains(t, full, GetVersionString())
	assert.Contains(t, full, "commit: "+GitCommit)
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
}
