package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/wrappers"
)

var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Report findings against a compliance standard (default NIST CSF 2.0)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ce, err := complianceEngine(cfg.Compliance.ProfilesDir)
		if err != nil {
			return err
		}

		if list, _ := cmd.Flags().GetBool("list"); list {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ce.ListStandards(), "\n"))
			return nil
		}

		standard, _ := cmd.Flags().GetString("standard")
		profile, ok := ce.GetProfile(standard)
		if !ok {
			return fmt.Errorf("standard %q not found (available: %s)", standard, strings.Join(ce.ListStandards(), ", "))
		}

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		report, err := rt.analyzer.Compliance(cmd.Context(), profile)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), report)
		}
		fmt.Fprintln(cmd.OutOrStdout(), wrappers.FormatCompliance(report))
		return nil
	},
}

func init() {
	complianceCmd.Flags().String("standard", engine.DefaultStandard, "Compliance standard to report against")
	complianceCmd.Flags().Bool("list", false, "List available standards")
	complianceCmd.Flags().Bool("json", false, "Print the report as JSON")
	rootCmd.AddCommand(complianceCmd)
}
