package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/internal/eligibility"
	"github.com/wonny/fiscalrisk/pkg/currency"
)

// regionsCmd represents the regions command
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the jurisdiction catalog",
	Long: `Lists every region of the jurisdiction catalog, or shows one rule in full.
With --type the project profile is checked against the region.

Example:
  go run ./cmd/fiscal regions
  go run ./cmd/fiscal regions --id navarra
  go run ./cmd/fiscal regions --id madrid --type startup --age 2 --location madrid`,
	RunE: runRegions,
}

var (
	regionID        string
	profileType     string
	profileAge      float64
	profileLocation string
)

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().StringVar(&regionID, "id", "", "region ID to show in full")
	addProfileFlags(regionsCmd)
}

// addProfileFlags registers the project profile flags shared by several commands.
func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&profileType, "type", "", "project type, e.g. \"startup de base tecnologica\"")
	cmd.Flags().Float64Var(&profileAge, "age", 0, "project age in years")
	cmd.Flags().StringVar(&profileLocation, "location", "", "region where the project is registered")
}

// profileFromFlags returns nil unless --type was given.
func profileFromFlags() *contracts.ProjectProfile {
	if profileType == "" {
		return nil
	}
	return &contracts.ProjectProfile{
		Type:     profileType,
		AgeYears: profileAge,
		Location: profileLocation,
	}
}

func runRegions(cmd *cobra.Command, args []string) error {
	s, err := loadSession()
	if err != nil {
		return err
	}

	if regionID == "" {
		summaries := s.catalog.List()
		if jsonOutput {
			return PrintJSON(summaries)
		}

		PrintHeader(fmt.Sprintf("Jurisdiction catalog %s (%d regions)", s.catalog.Meta().Version, s.catalog.Len()))
		fmt.Printf("  %-22s %-28s %6s  %-10s\n", "ID", "NAME", "RATE", "NATIONAL")
		for _, r := range summaries {
			compat := "yes"
			if !r.Compatible {
				compat = "no"
			}
			fmt.Printf("  %-22s %-28s %5.0f%%  %-10s\n", r.RegionID, r.Name, r.Rate*100, compat)
		}
		PrintDoubleSeparator()
		return nil
	}

	rule, ok := s.catalog.Get(regionID)
	if !ok {
		return fmt.Errorf("region not found: %s", regionID)
	}

	var check *eligibility.Result
	if profile := profileFromFlags(); profile != nil {
		res := eligibility.NewValidator(s.catalog).Validate(profile, regionID)
		check = &res
	}

	if jsonOutput {
		return PrintJSON(map[string]interface{}{
			"rule":        rule,
			"eligibility": check,
		})
	}

	PrintHeader(rule.Name)
	PrintField("ID", rule.ID)
	PrintPercent("Rate", rule.Rate*100)
	PrintField("Cap base", currency.Format(rule.CapBase))
	PrintField("Nationally compatible", rule.NationallyCompatible)
	PrintField("Accepted profiles", strings.Join(rule.AcceptedProfiles, ", "))
	if rule.SpecialRegime != "" {
		PrintField("Special regime", rule.SpecialRegime)
	}
	if rule.Notes != "" {
		PrintField("Notes", rule.Notes)
	}

	if check != nil {
		PrintSeparator()
		PrintField("Eligible", check.Valid)
		PrintField("Message", check.Message)
		if check.Warning != "" {
			PrintWarning(check.Warning)
		}
	}
	PrintDoubleSeparator()
	return nil
}
