package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/jurisdiction"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	catalog, err := jurisdiction.Default()
	require.NoError(t, err)
	return NewValidator(catalog)
}

func TestValidator_Validate(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name        string
		profile     *contracts.ProjectProfile
		region      string
		wantValid   bool
		wantWarning bool
	}{
		{
			name:    "nil profile",
			profile: nil,
			region:  "madrid",
		},
		{
			name:    "empty region",
			profile: &contracts.ProjectProfile{Type: "startup"},
			region:  " ",
		},
		{
			name:    "unknown region",
			profile: &contracts.ProjectProfile{Type: "startup"},
			region:  "atlantis",
		},
		{
			name:    "incompatible jurisdiction",
			profile: &contracts.ProjectProfile{Type: "startup", Location: "navarra"},
			region:  "navarra",
		},
		{
			name:    "profile not accepted",
			profile: &contracts.ProjectProfile{Type: "restaurante", AgeYears: 1, Location: "cataluna"},
			region:  "cataluna",
		},
		{
			name:    "too old",
			profile: &contracts.ProjectProfile{Type: "startup", AgeYears: 6, Location: "madrid"},
			region:  "madrid",
		},
		{
			name:      "valid same location",
			profile:   &contracts.ProjectProfile{Type: "Startup Tecnologica", AgeYears: 2, Location: "Cataluna"},
			region:    "cataluna",
			wantValid: true,
		},
		{
			name:        "valid with location warning",
			profile:     &contracts.ProjectProfile{Type: "startup", AgeYears: 5, Location: "valencia"},
			region:      "madrid",
			wantValid:   true,
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.profile, tt.region)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.NotEmpty(t, got.Message)
			assert.Equal(t, tt.wantWarning, got.Warning != "")
		})
	}
}

func TestMatchesProfile(t *testing.T) {
	restricted := jurisdiction.Rule{ID: "x", Name: "X", AcceptedProfiles: []string{"startup", "Base Tecnologica"}}

	tests := []struct {
		name string
		rule jurisdiction.Rule
		typ  string
		want bool
	}{
		{"empty accepted list", jurisdiction.Rule{}, "anything", true},
		{"all sentinel", jurisdiction.Rule{AcceptedProfiles: []string{"ALL"}}, "bakery", true},
		{"substring match", restricted, "empresa de base tecnologica", true},
		{"case insensitive", restricted, "STARTUP", true},
		{"no match", restricted, "bakery", false},
		{"empty type", restricted, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesProfile(tt.rule, tt.typ))
		})
	}
}

func TestRequiredProfilesMessage(t *testing.T) {
	rule := jurisdiction.Rule{Name: "Baleares", AcceptedProfiles: []string{"startup", "cultural"}}
	msg := RequiredProfilesMessage(rule)
	assert.Contains(t, msg, "startup, cultural")
	assert.Contains(t, msg, "Baleares")
}

func TestLocationMismatch(t *testing.T) {
	assert.False(t, LocationMismatch(nil, "madrid"))
	assert.False(t, LocationMismatch(&contracts.ProjectProfile{}, "madrid"))
	assert.False(t, LocationMismatch(&contracts.ProjectProfile{Location: " Madrid"}, "madrid"))
	assert.True(t, LocationMismatch(&contracts.ProjectProfile{Location: "galicia"}, "madrid"))
}
