package cmd

import (
	"github.com/huangsam/sedwarp/core"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/spf13/cobra"
)

// distanceCmd computes the whole-record distance against the reference.
var distanceCmd = &cobra.Command{
	Use:   "distance <data-file>",
	Short: "Compute the DTW distance of one record against the reference.",
	Long: `Condition one data record and the reference (filtered to --end) and
print the DTW distance between them, without sweeping truncation times.

Examples:
  sedwarp distance data/core_1100_d18O.csv
  sedwarp distance data/core_1100_d18O.csv --normalize no --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDistance(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute distance", err)
		}
	},
}
