package allocation

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/jurisdiction"
	"github.com/wonny/fiscalrisk/pkg/currency"
	"github.com/wonny/fiscalrisk/pkg/logger"
)

func newTestAllocator(t *testing.T, cfg Config) *Allocator {
	t.Helper()
	catalog, err := jurisdiction.Default()
	require.NoError(t, err)
	return NewAllocator(cfg, catalog, logger.Nop())
}

func severities(alerts []contracts.Alert) []contracts.Severity {
	out := make([]contracts.Severity, len(alerts))
	for i, a := range alerts {
		out[i] = a.Severity
	}
	return out
}

func TestAllocate_Example(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NationalCapBase = 9279
	a := newTestAllocator(t, cfg)

	got := a.Allocate(context.Background(), contracts.AllocationRequest{
		TotalInvestment: 20000,
		RegionID:        "madrid",
	})

	assert.Equal(t, "madrid", got.RegionID)
	assert.InDelta(t, 9279, got.NationalInvestment, 1e-9)
	assert.InDelta(t, 9279, got.RegionalInvestment, 1e-9, "10721 remaining, capped at the regional base")
	assert.InDelta(t, 18558, got.TotalUsedInvestment, 1e-9)
	assert.InDelta(t, 1442, got.UnusedInvestment, 1e-9)
	assert.InDelta(t, 9279*0.5, got.NationalDeduction, 1e-9)
	assert.InDelta(t, 9279*0.4, got.RegionalDeduction, 1e-9)
	assert.InDelta(t, 9279*0.5+9279*0.4, got.TotalDeduction, 1e-9)
	assert.InDelta(t, got.TotalDeduction/got.TotalUsedInvestment*100, got.EffectiveFiscalReturn, 1e-9)
	assert.InDelta(t, got.TotalUsedInvestment-got.TotalDeduction, got.NetCost, 1e-9)
	assert.True(t, got.ProfileValidation.Valid)

	// unused, national cap, regional cap, notes
	require.Len(t, got.Alerts, 4)
	assert.Equal(t, []contracts.Severity{
		contracts.SeverityWarning,
		contracts.SeverityInfo,
		contracts.SeverityInfo,
		contracts.SeverityInfo,
	}, severities(got.Alerts))
	assert.Contains(t, got.Alerts[0].Message, currency.Format(1442))
	assert.Contains(t, got.Alerts[1].Message, "National deduction cap")
	rule, _ := jurisdiction.MustDefault().Get("madrid")
	assert.Equal(t, rule.Notes, got.Alerts[3].Message)
}

func TestAllocate_Rejected(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())

	tests := []struct {
		name string
		req  contracts.AllocationRequest
	}{
		{"below minimum", contracts.AllocationRequest{TotalInvestment: 999, RegionID: "madrid"}},
		{"zero", contracts.AllocationRequest{TotalInvestment: 0, RegionID: "madrid"}},
		{"negative", contracts.AllocationRequest{TotalInvestment: -5000, RegionID: "madrid"}},
		{"nan", contracts.AllocationRequest{TotalInvestment: math.NaN(), RegionID: "madrid"}},
		{"unknown region", contracts.AllocationRequest{TotalInvestment: 50000, RegionID: "atlantis"}},
		{"empty region", contracts.AllocationRequest{TotalInvestment: 50000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Allocate(context.Background(), tt.req)
			assert.Equal(t, contracts.EmptyAllocation(), got)
			assert.True(t, got.IsEmpty())
			assert.Empty(t, got.Alerts)
		})
	}
}

func TestAllocate_IncompatibleJurisdiction(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())

	for _, region := range []string{"navarra", "pais_vasco", "ceuta"} {
		t.Run(region, func(t *testing.T) {
			got := a.Allocate(context.Background(), contracts.AllocationRequest{
				TotalInvestment: 300000,
				RegionID:        region,
				RegionalQuota:   contracts.Quota(1e9),
			})
			assert.Zero(t, got.RegionalInvestment)
			assert.Zero(t, got.RegionalDeduction)
			assert.False(t, got.NationallyCompatible)
			assert.InDelta(t, 100000, got.NationalInvestment, 1e-9)

			require.GreaterOrEqual(t, len(got.Alerts), 2)
			assert.Equal(t, contracts.SeverityWarning, got.Alerts[1].Severity)
			assert.Contains(t, got.Alerts[1].Message, "cannot be combined")
		})
	}
}

func TestAllocate_QuotaShortfall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NationalCapBase = 9279
	a := newTestAllocator(t, cfg)

	got := a.Allocate(context.Background(), contracts.AllocationRequest{
		TotalInvestment: 20000,
		RegionID:        "madrid",
		NationalQuota:   contracts.Quota(1000),
		RegionalQuota:   contracts.Quota(500),
	})

	// national: quota 1000 at 50% reaches 2000
	assert.InDelta(t, 2000, got.NationalInvestment, 1e-9)
	assert.InDelta(t, 1000, got.NationalDeduction, 1e-9)
	// regional: quota 500 at 40% reaches 1250
	assert.InDelta(t, 1250, got.RegionalInvestment, 1e-9)
	assert.InDelta(t, 500, got.RegionalDeduction, 1e-9)

	var national, regional string
	for _, al := range got.Alerts {
		switch {
		case al.Severity == contracts.SeverityWarning && strings.Contains(al.Message, "National tax quota"):
			national = al.Message
		case al.Severity == contracts.SeverityWarning && strings.Contains(al.Message, "Regional tax quota"):
			regional = al.Message
		}
	}
	assert.Contains(t, national, currency.Format(9279*0.5-1000))
	assert.Contains(t, regional, currency.Format(9279*0.4-500))
}

func TestAllocate_ProfileBlocksRegionalPool(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())

	got := a.Allocate(context.Background(), contracts.AllocationRequest{
		TotalInvestment: 150000,
		RegionID:        "cataluna",
		Profile:         &contracts.ProjectProfile{Type: "restaurante", AgeYears: 7, Location: "madrid"},
	})

	assert.False(t, got.ProfileValidation.Valid)
	assert.Contains(t, got.ProfileValidation.Message, "startup")
	assert.Zero(t, got.RegionalInvestment)
	assert.InDelta(t, 100000, got.NationalInvestment, 1e-9)

	last := got.Alerts[len(got.Alerts)-2:]
	assert.Contains(t, last[0].Message, "years old")
	assert.Contains(t, last[1].Message, "differs from")
}

func TestAllocate_ValidProfile(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())

	got := a.Allocate(context.Background(), contracts.AllocationRequest{
		TotalInvestment: 104000,
		RegionID:        "Cataluna",
		Profile:         &contracts.ProjectProfile{Type: "Startup SaaS", AgeYears: 1, Location: "cataluna"},
	})

	assert.True(t, got.ProfileValidation.Valid)
	assert.InDelta(t, 100000, got.NationalInvestment, 1e-9)
	assert.InDelta(t, 4000, got.RegionalInvestment, 1e-9)
	assert.Zero(t, got.UnusedInvestment)
	assert.False(t, got.HasWarnings())
}

func TestAllocate_Properties(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestAllocator(t, cfg)
	regions := jurisdiction.MustDefault().List()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		region := regions[rng.Intn(len(regions))]
		req := contracts.AllocationRequest{
			TotalInvestment: cfg.MinInvestment + rng.Float64()*250000,
			RegionID:        region.RegionID,
		}
		if rng.Intn(2) == 0 {
			req.NationalQuota = contracts.Quota(rng.Float64() * 60000)
		}
		if rng.Intn(2) == 0 {
			req.RegionalQuota = contracts.Quota(rng.Float64() * 10000)
		}

		got := a.Allocate(context.Background(), req)
		rule, _ := jurisdiction.MustDefault().Get(region.RegionID)

		assert.LessOrEqual(t, got.NationalInvestment+got.RegionalInvestment, req.TotalInvestment+1e-6)
		assert.LessOrEqual(t, got.NationalInvestment, cfg.NationalCapBase+1e-9)
		assert.LessOrEqual(t, got.RegionalInvestment, rule.CapBase+1e-9)
		assert.GreaterOrEqual(t, got.UnusedInvestment, -1e-6)
		assert.InDelta(t, req.TotalInvestment-got.TotalUsedInvestment, got.UnusedInvestment, 1e-6)
		if !rule.NationallyCompatible {
			assert.Zero(t, got.RegionalInvestment)
		}

		// no hidden state
		assert.Equal(t, got, a.Allocate(context.Background(), req))
	}
}
