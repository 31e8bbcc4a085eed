package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/analyzer"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/awsclient"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/cache"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/collectors"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/config"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "aws-analyzer",
	Short: "AWS security posture analyzer",
	Long: `aws-analyzer reads IAM policies and Security Hub findings from an AWS
account, flags overly permissive policies and reports alerts, a posture score
and a NIST CSF 2.0 compliance view.`,
	SilenceUsage: true,
}

var (
	DebugMode  bool
	ConfigPath string
)

// Execute adds all child commands to the root command and sets flags appropriately.
// An interrupt cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ConfigPath, "config", "", "Config file (default ~/.aws-analyzer/config.yaml)")
}

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logr.Logger, error) {
	return logging.New(DebugMode, cfg.Log.Development)
}

// runtime bundles what the data commands share.
type runtime struct {
	cfg      *config.Config
	log      logr.Logger
	cache    cache.Cache
	analyzer *analyzer.Analyzer
}

func (r *runtime) Close() {
	if err := r.cache.Close(); err != nil {
		r.log.Error(err, "Failed to close cache")
	}
}

// newRuntime loads configuration and wires the AWS clients, collectors,
// cache and analyzer.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	clients, err := awsclient.NewClients(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	var c cache.Cache = cache.Nop{}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedis(cache.RedisOptions{URL: cfg.Cache.RedisURL})
		if err != nil {
			log.Error(err, "Cache unavailable, scanning without it")
		} else {
			c = rc
		}
	}

	a := analyzer.New(
		collectors.NewPolicyCollector(clients.IAM, log),
		collectors.NewFindingsCollector(clients.SecurityHub, log),
		analyzer.WithLogger(log),
		analyzer.WithTimeout(cfg.Scan.Timeout),
		analyzer.WithCache(c, clients.Region, cfg.Cache.TTL),
	)

	return &runtime{cfg: cfg, log: log, cache: c, analyzer: a}, nil
}

// complianceEngine loads the built-in profiles plus any from profilesDir.
func complianceEngine(profilesDir string) (*engine.ComplianceEngine, error) {
	ce, err := engine.NewComplianceEngine()
	if err != nil {
		return nil, err
	}
	if profilesDir != "" {
		if _, err := ce.LoadProfiles(profilesDir); err != nil {
			return nil, fmt.Errorf("load profiles from %s: %w", profilesDir, err)
		}
	}
	return ce, nil
}

// remediationEngine loads the built-in fix templates plus any from templatesDir.
func remediationEngine(templatesDir string) (*engine.RemediationEngine, error) {
	re, err := engine.NewRemediationEngine()
	if err != nil {
		return nil, err
	}
	if templatesDir != "" {
		if _, err := re.LoadTemplates(templatesDir); err != nil {
			return nil, fmt.Errorf("load remediation templates from %s: %w", templatesDir, err)
		}
	}
	return re, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
