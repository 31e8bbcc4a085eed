package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/advisor"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		ask := func(prompt string) string {
			fmt.Fprint(out, prompt)
			scanner.Scan()
			return strings.TrimSpace(scanner.Text())
		}

		cfg, err := config.Load(ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		fmt.Fprintln(out, "Welcome to the AWS Analyzer Setup Wizard")
		fmt.Fprintln(out, "----------------------------------------")

		fmt.Fprintln(out, "Step 1: AWS region")
		if region := ask(fmt.Sprintf("Region [%s] > ", cfg.AWS.Region)); region != "" {
			cfg.AWS.Region = region
		}
		if profile := ask(fmt.Sprintf("Shared config profile (blank for default chain) [%s] > ", cfg.AWS.Profile)); profile != "" {
			cfg.AWS.Profile = profile
		}

		fmt.Fprintln(out, "\nStep 2: Choose the advisor provider")
		fmt.Fprintln(out, "1. Gemini (Google)")
		fmt.Fprintln(out, "2. Offline (no AI, deterministic briefing)")
		var provider string
		switch strings.ToLower(ask("Enter number or name > ")) {
		case "1", advisor.ProviderGemini:
			provider = advisor.ProviderGemini
		case "2", advisor.ProviderOffline, "":
			provider = advisor.ProviderOffline
		default:
			return fmt.Errorf("invalid provider choice")
		}
		cfg.Advisor.Provider = provider
		cfg.Advisor.Model = ""

		if provider == advisor.ProviderGemini {
			fmt.Fprintf(out, "\nStep 3: Enter API Key for %s\n", provider)
			apiKey := ask("> ")
			if apiKey == "" {
				return fmt.Errorf("API key cannot be empty")
			}
			cfg.SetAPIKey(provider, apiKey)

			fmt.Fprintln(out, "\nValidating key and fetching available models...")
			ctx := cmd.Context()
			p, err := advisor.NewProvider(ctx, provider, apiKey, "")
			if err != nil {
				return fmt.Errorf("initialize provider: %w", err)
			}
			models, err := p.ListModels(ctx)
			if closer, ok := p.(interface{ Close() }); ok {
				closer.Close()
			}

			if err != nil || len(models) == 0 {
				fmt.Fprintf(out, "Warning: could not fetch models: %v\n", err)
				cfg.Advisor.Model = ask("Enter model name manually (e.g., 'gemini-1.5-flash') > ")
			} else {
				fmt.Fprintf(out, "Successfully retrieved %d models.\n", len(models))
				for i, m := range models {
					fmt.Fprintf(out, "%d. %s\n", i+1, m)
				}
				idx, err := strconv.Atoi(ask("Select Model (number) > "))
				if err != nil || idx < 1 || idx > len(models) {
					fmt.Fprintln(out, "Invalid selection. Using first available model.")
					idx = 1
				}
				cfg.Advisor.Model = models[idx-1]
			}
		}

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(ConfigPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintln(out, "----------------------------------------")
		fmt.Fprintln(out, "Setup Complete!")
		fmt.Fprintf(out, "Region:   %s\n", cfg.AWS.Region)
		fmt.Fprintf(out, "Provider: %s\n", provider)
		if cfg.Advisor.Model != "" {
			fmt.Fprintf(out, "Model:    %s\n", cfg.Advisor.Model)
		}
		fmt.Fprintln(out, "You can now run 'aws-analyzer scan' or 'aws-analyzer advise'")
		return nil
	},
}

func init() {
	configCmd.AddCommand(setupCmd)
}
