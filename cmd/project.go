package cmd

import (
	"github.com/huangsam/sedwarp/core"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/spf13/cobra"
)

// projectCmd maps a saved warping path onto reference time.
var projectCmd = &cobra.Command{
	Use:   "project <data-file> <path-file>",
	Short: "Project a saved warping path into a time/value series.",
	Long: `Read a warping path written by 'sedwarp align' and assign each data
value the reference time it was matched to.

Examples:
  sedwarp project data/core_1100_d18O.csv out/warping-paths/dist-vs-time_core_1100_d18O_LR04stack.txt
  sedwarp project data/core_1100_d18O.csv path.txt --output json --output-file series.json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProject(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot project path", err)
		}
	},
}
