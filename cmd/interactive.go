package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start an interactive advisor session",
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

		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprintln(out, "---------------------------------------------------------")
		fmt.Fprintf(out, "AWS Analyzer advisor (%s) ready for region %s.\n", rt.cfg.Advisor.Provider, rt.cfg.AWS.Region)
		fmt.Fprintln(out, "Example: 'What are my most urgent risks?'")
		fmt.Fprintln(out, "Example: 'Which NIST CSF controls am I failing?'")
		fmt.Fprintln(out, "Type 'quit' or 'exit' to stop.")
		fmt.Fprintln(out, "---------------------------------------------------------")

		for {
			fmt.Fprint(out, "\n> ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "quit" || input == "exit" {
				break
			}
			if input == "" {
				continue
			}

			fmt.Fprint(out, "Advisor thinking... ")
			resp, err := adv.Chat(ctx, input, func(msg string) {
				fmt.Fprintf(out, "\r\033[K[Progress]: %s\nAdvisor thinking... ", msg)
			})
			fmt.Fprint(out, "\r\033[K")

			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				if ctx.Err() != nil {
					return nil
				}
				continue
			}
			fmt.Fprintf(out, "\n[Advisor]: %s\n", resp)
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
