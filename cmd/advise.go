package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/advisor"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/config"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/wrappers"
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Generate a narrative briefing of the current security posture",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		adv, closeProvider, err := newAdvisor(ctx, rt)
		if err != nil {
			return err
		}
		defer closeProvider()

		results, err := rt.analyzer.Scan(ctx)
		if err != nil {
			return err
		}
		alerts, err := rt.analyzer.Alerts(ctx)
		if err != nil {
			rt.log.Error(err, "Alerts unavailable, briefing on scan results only")
		}

		top, _ := cmd.Flags().GetInt("top")
		resp, err := adv.Brief(ctx, advisor.Briefing{
			Region:  rt.cfg.AWS.Region,
			Score:   rt.analyzer.Score(ctx),
			Results: results,
			Alerts:  alerts,
			TopN:    top,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp)
		return nil
	},
}

// newAdvisor builds the configured provider and registers the analyzer
// tools. The returned func releases the provider.
func newAdvisor(ctx context.Context, rt *runtime) (*advisor.Advisor, func(), error) {
	provider, err := newProvider(ctx, rt.cfg)
	if err != nil {
		return nil, nil, err
	}
	closeProvider := func() {}
	if closer, ok := provider.(interface{ Close() }); ok {
		closeProvider = closer.Close
	}

	ce, err := complianceEngine(rt.cfg.Compliance.ProfilesDir)
	if err != nil {
		closeProvider()
		return nil, nil, err
	}

	re, err := remediationEngine(rt.cfg.Compliance.TemplatesDir)
	if err != nil {
		closeProvider()
		return nil, nil, err
	}

	adv := advisor.New(provider, rt.log)
	for _, tool := range wrappers.Tools(rt.analyzer, ce, re, rt.cfg.AWS.Region) {
		adv.RegisterTool(tool)
	}
	return adv, closeProvider, nil
}

func newProvider(ctx context.Context, cfg *config.Config) (advisor.Provider, error) {
	name := cfg.Advisor.Provider
	provider, err := advisor.NewProvider(ctx, name, cfg.GetAPIKey(name), cfg.Advisor.Model)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'aws-analyzer config setup')", err)
	}
	return provider, nil
}

func init() {
	adviseCmd.Flags().Int("top", 10, "Number of findings to include in full")
	rootCmd.AddCommand(adviseCmd)
}
