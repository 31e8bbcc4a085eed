package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan IAM policies and Security Hub findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		results, err := rt.analyzer.Scan(cmd.Context())
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("save-snapshot"); path != "" {
			snap := engine.Snapshot{TakenAt: time.Now().UTC(), Region: rt.cfg.AWS.Region, Results: results}
			if err := engine.SaveSnapshot(path, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d findings to %s\n", len(results), path)
		}

		if text, _ := cmd.Flags().GetBool("text"); text {
			fmt.Fprint(cmd.OutOrStdout(), engine.Report(results))
			return nil
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			return printJSON(f, results)
		}
		return printJSON(cmd.OutOrStdout(), results)
	},
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List CRITICAL and HIGH Security Hub alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		alerts, err := rt.analyzer.Alerts(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), alerts)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the security score (0-100)",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		return printJSON(cmd.OutOrStdout(), map[string]float64{"score": rt.analyzer.Score(cmd.Context())})
	},
}

func init() {
	scanCmd.Flags().StringP("output", "o", "", "Write JSON results to a file instead of stdout")
	scanCmd.Flags().String("save-snapshot", "", "Also save the results as a snapshot baseline")
	scanCmd.Flags().Bool("text", false, "Print a human readable report instead of JSON")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(scoreCmd)
}
