package cmd

import (
	"github.com/huangsam/sedwarp/core"
	"github.com/huangsam/sedwarp/internal/contract"
	"github.com/spf13/cobra"
)

// splitCmd splits a multi-column core table into per-variable files.
var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a multi-column core table into one file per variable.",
	Long: `Write <name>_<variable>.csv next to the input for every value column,
pairing it with the depth column and dropping rows with missing values.

Examples:
  sedwarp split data/core_1100.csv
  sedwarp split data/core_1100.csv --data-axis depth --split-columns d18O,aragonite`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSplit(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot split file", err)
		}
	},
}
