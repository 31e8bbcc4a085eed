package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

var remediateCmd = &cobra.Command{
	Use:   "remediate [resource-id]",
	Short: "Print fix, validation and rollback commands for current findings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		re, err := remediationEngine(cfg.Compliance.TemplatesDir)
		if err != nil {
			return err
		}

		if list, _ := cmd.Flags().GetBool("list"); list {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(re.ListTemplates(), "\n"))
			return nil
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

		out := cmd.OutOrStdout()
		planned, skipped := 0, 0
		for _, r := range results {
			if len(args) == 1 && r.ResourceID != args[0] {
				continue
			}
			plan, err := re.PlanFor(r)
			if errors.Is(err, engine.ErrNoRemediation) {
				skipped++
				rt.log.V(1).Info("No remediation template", "resourceID", r.ResourceID, "finding", r.Finding)
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s (%s)\n%s\n", r.ResourceID, r.Finding, plan)
			planned++
		}
		fmt.Fprintf(out, "%d plans generated, %d findings without a template\n", planned, skipped)
		return nil
	},
}

func init() {
	remediateCmd.Flags().Bool("list", false, "List available remediation templates")
	rootCmd.AddCommand(remediateCmd)
}
