package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fiscalrisk/internal/allocation"
	"github.com/wonny/fiscalrisk/internal/contracts"
)

// allocateCmd represents the allocate command
var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Split an investment between the national and regional deductions",
	Long: `Runs the deduction allocator. Quotas are the investor's remaining tax
liability per pool; unset quotas are unlimited.

Example:
  go run ./cmd/fiscal allocate --investment 20000 --region madrid
  go run ./cmd/fiscal allocate --investment 50000 --region navarra --national-quota 4000
  go run ./cmd/fiscal allocate --investment 20000 --region cataluna --type startup --age 2 --location cataluna`,
	RunE: runAllocate,
}

var (
	investment    float64
	nationalQuota float64
	regionalQuota float64
)

func init() {
	rootCmd.AddCommand(allocateCmd)
	addAllocationFlags(allocateCmd)
}

// addAllocationFlags registers the allocation request flags shared by several commands.
func addAllocationFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&investment, "investment", 0, "total investment")
	cmd.Flags().StringVar(&regionID, "region", "", "region ID")
	cmd.Flags().Float64Var(&nationalQuota, "national-quota", 0, "remaining national tax liability")
	cmd.Flags().Float64Var(&regionalQuota, "regional-quota", 0, "remaining regional tax liability")
	addProfileFlags(cmd)
}

// allocationRequestFromFlags builds the request; quotas are set only when passed.
func allocationRequestFromFlags(cmd *cobra.Command) contracts.AllocationRequest {
	req := contracts.AllocationRequest{
		TotalInvestment: investment,
		RegionID:        regionID,
		Profile:         profileFromFlags(),
	}
	if cmd.Flags().Changed("national-quota") {
		req.NationalQuota = contracts.Quota(nationalQuota)
	}
	if cmd.Flags().Changed("regional-quota") {
		req.RegionalQuota = contracts.Quota(regionalQuota)
	}
	return req
}

// allocate runs the allocator with the session configuration.
func (s *session) allocate(ctx context.Context, req contracts.AllocationRequest) contracts.AllocationResult {
	allocator := allocation.NewAllocator(allocation.ConfigFrom(s.cfg.Fiscal), s.catalog, s.log)
	return allocator.Allocate(ctx, req)
}

func runAllocate(cmd *cobra.Command, args []string) error {
	s, err := loadSession()
	if err != nil {
		return err
	}

	req := allocationRequestFromFlags(cmd)
	res := s.allocate(cmd.Context(), req)

	if jsonOutput {
		return PrintJSON(res)
	}

	if res.IsEmpty() {
		PrintWarning(fmt.Sprintf("Nothing allocated: investment must be at least %.0f and the region must exist (%q)",
			s.cfg.Fiscal.MinInvestment, req.RegionID))
		return nil
	}

	PrintAllocation(res)
	return nil
}

// PrintAllocation prints an allocation result block
func PrintAllocation(res contracts.AllocationResult) {
	PrintHeader("Deduction allocation: " + res.RegionID)
	PrintMoney("National investment", res.NationalInvestment)
	PrintMoney("Regional investment", res.RegionalInvestment)
	PrintMoney("Used investment", res.TotalUsedInvestment)
	PrintMoney("Unused investment", res.UnusedInvestment)
	PrintSeparator()
	PrintMoney("National deduction", res.NationalDeduction)
	PrintMoney("Regional deduction", res.RegionalDeduction)
	PrintMoney("Total deduction", res.TotalDeduction)
	PrintPercent("Effective return", res.EffectiveFiscalReturn)
	PrintMoney("Net cost", res.NetCost)
	PrintSeparator()
	PrintField("Profile valid", res.ProfileValidation.Valid)
	PrintField("Profile message", res.ProfileValidation.Message)
	PrintAlerts(res.Alerts)
	PrintDoubleSeparator()
}
