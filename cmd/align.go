package cmd

import (
	"github.com/huangsam/sedwarp/core"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/spf13/cobra"
)

// alignCmd runs the batch alignment over every core and variable.
var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Find the best-matching reference age for each core record.",
	Long: `Sweep candidate truncation times of the reference stack for every
core/variable record and report the time with the smallest DTW distance.

For each record found in --data-dir, writes:
- the warping path to <out-dir>/warping-paths
- the projected time/value series to <out-dir>/series
- a distance-vs-time chart to <out-dir>/figures

Results are cached per record, so unchanged inputs are not swept again.

Examples:
  # Align the default cores against LR04
  sedwarp align

  # Narrow the sweep and export a table
  sedwarp align --cores 1100 --start 100 --end 300 --step 2.5 --output csv --output-file fits.csv

  # Record run history and publish events
  sedwarp align --analysis-backend sqlite --kafka-brokers localhost:9092`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAlign(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run alignment", err)
		}
	},
}
