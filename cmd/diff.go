package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/wrappers"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the current scan against a saved snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		baselinePath, _ := cmd.Flags().GetString("baseline")
		baseline, err := engine.LoadSnapshot(baselinePath)
		if err != nil {
			return fmt.Errorf("load baseline: %w (save one with 'aws-analyzer scan --save-snapshot %s')", err, baselinePath)
		}

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		results, err := rt.analyzer.Scan(cmd.Context())
		if err != nil {
			return err
		}

		diff := engine.CompareSnapshot(results, baseline.Results)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), diff)
		}
		fmt.Fprint(cmd.OutOrStdout(), wrappers.FormatDiff(diff, baselinePath))
		return nil
	},
}

func init() {
	diffCmd.Flags().String("baseline", engine.DefaultSnapshotPath, "Snapshot file to compare against")
	diffCmd.Flags().Bool("json", false, "Print the comparison as JSON")
	rootCmd.AddCommand(diffCmd)
}
