package commands

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationRequestFromFlags(t *testing.T) {
	t.Cleanup(func() {
		investment, regionID, profileType = 0, "", ""
		nationalQuota, regionalQuota = 0, 0
	})

	require.NoError(t, allocateCmd.ParseFlags([]string{
		"--investment", "20000",
		"--region", "madrid",
		"--national-quota", "3000",
		"--type", "startup",
		"--age", "2",
	}))

	req := allocationRequestFromFlags(allocateCmd)
	assert.Equal(t, 20000.0, req.TotalInvestment)
	assert.Equal(t, "madrid", req.RegionID)
	require.NotNil(t, req.NationalQuota)
	assert.Equal(t, 3000.0, *req.NationalQuota)
	assert.Nil(t, req.RegionalQuota, "unset quota stays unlimited")
	require.NotNil(t, req.Profile)
	assert.Equal(t, "startup", req.Profile.Type)
	assert.Equal(t, 2.0, req.Profile.AgeYears)
}

func TestProfileFromFlags_Unset(t *testing.T) {
	profileType = ""
	assert.Nil(t, profileFromFlags())
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"720h", 720 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"-1h", 0, true},
		{"a week", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAge(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "1.235", formatRatio(1.23456))
	assert.Contains(t, formatRatio(math.Inf(1)), "no downside")
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"90%_1y", "95%_3y", "99%_10y"},
		sortedKeys(map[string]int{"99%_10y": 1, "90%_1y": 2, "95%_3y": 3}))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"api", "regions", "allocate", "risk", "simulate", "optimize", "history"} {
		assert.True(t, names[want], want)
	}
}
