package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/schedule"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the security API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			rt.cfg.Server.Addr = addr
		}
		if !DebugMode {
			gin.SetMode(gin.ReleaseMode)
		}

		ce, err := complianceEngine(rt.cfg.Compliance.ProfilesDir)
		if err != nil {
			return err
		}

		if spec := rt.cfg.Server.RescanSchedule; spec != "" {
			sched, err := schedule.New(spec, func(ctx context.Context) {
				score := rt.analyzer.Refresh(ctx)
				rt.log.Info("Scheduled rescan complete", "score", score)
			}, rt.log)
			if err != nil {
				return err
			}
			go func() {
				if err := sched.Run(ctx); err != nil {
					rt.log.Error(err, "Rescan scheduler stopped")
				}
			}()
		}

		srv := server.New(rt.analyzer, ce, rt.cache, rt.log)
		return srv.Run(ctx, rt.cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
