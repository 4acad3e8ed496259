// Package eligibility decides whether a project qualifies for a region's deduction.
package eligibility

import (
	"fmt"
	"strings"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/jurisdiction"
)

// MaxProjectAgeYears is the oldest company that still qualifies.
const MaxProjectAgeYears = 5

// Result is the verdict of Validate. Warning is set only on valid results.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

// Validator checks project profiles against the jurisdiction catalog.
type Validator struct {
	catalog *jurisdiction.Catalog
}

// NewValidator creates a validator over catalog.
func NewValidator(catalog *jurisdiction.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate fails closed: a missing profile, unknown region or incompatible
// jurisdiction yields Valid=false.
func (v *Validator) Validate(profile *contracts.ProjectProfile, regionID string) Result {
	if profile == nil || strings.TrimSpace(regionID) == "" {
		return Result{Message: "project profile and region are required"}
	}

	rule, ok := v.catalog.Get(regionID)
	if !ok {
		return Result{Message: fmt.Sprintf("unknown region %q", regionID)}
	}

	if !rule.NationallyCompatible {
		return Result{Message: fmt.Sprintf("%s deduction is not compatible with the national deduction", rule.Name)}
	}

	if !MatchesProfile(rule, profile.Type) {
		return Result{Message: RequiredProfilesMessage(rule)}
	}

	if profile.AgeYears > MaxProjectAgeYears {
		return Result{Message: fmt.Sprintf("company is %.1f years old; maximum is %d years", profile.AgeYears, MaxProjectAgeYears)}
	}

	res := Result{Valid: true, Message: "project qualifies for the regional deduction"}
	if LocationMismatch(profile, rule.ID) {
		res.Warning = fmt.Sprintf("company location %q differs from region %s", profile.Location, rule.Name)
	}
	return res
}

// MatchesProfile reports whether projectType is accepted by rule. An empty
// accepted list or the "all" sentinel accepts anything; otherwise projectType
// must contain one accepted profile, ignoring case.
func MatchesProfile(rule jurisdiction.Rule, projectType string) bool {
	if len(rule.AcceptedProfiles) == 0 || rule.AcceptsAll() {
		return true
	}

	t := strings.ToLower(projectType)
	for _, p := range rule.AcceptedProfiles {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// RequiredProfilesMessage names the profiles a region accepts.
func RequiredProfilesMessage(rule jurisdiction.Rule) string {
	return fmt.Sprintf("%s requires one of these project profiles: %s",
		rule.Name, strings.Join(rule.AcceptedProfiles, ", "))
}

// LocationMismatch reports whether the profile names a location other than regionID.
// An empty location is not a mismatch.
func LocationMismatch(profile *contracts.ProjectProfile, regionID string) bool {
	if profile == nil || strings.TrimSpace(profile.Location) == "" {
		return false
	}
	return jurisdiction.NormalizeID(profile.Location) != jurisdiction.NormalizeID(regionID)
}
