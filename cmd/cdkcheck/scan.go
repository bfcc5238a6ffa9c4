package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nelson-Lamounier/cdk-monitoring/config"
	"github.com/Nelson-Lamounier/cdk-monitoring/policy"
	"github.com/Nelson-Lamounier/cdk-monitoring/report"
	"github.com/Nelson-Lamounier/cdk-monitoring/rules"
	"github.com/Nelson-Lamounier/cdk-monitoring/scanner"
	"github.com/Nelson-Lamounier/cdk-monitoring/stack"
	"github.com/Nelson-Lamounier/cdk-monitoring/telemetry"
)

var (
	scanTemplates []string
	scanPolicyDir string
	scanOutput    string
	scanFailOn    string
	scanWorkers   int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Evaluate templates once and exit",
	Long: `Scan parses each template, evaluates every applicable rule
against every resource, and prints a report. The exit code reflects
the verdicts, so scan slots directly into CI pipelines.`,
	Example: `  cdkcheck scan --template cdk.out/stack.template.json
  cdkcheck scan --template a.yaml --template b.yaml --output json
  cdkcheck scan --template stack.yaml --policy-dir policies/
  cdkcheck scan --template stack.yaml --fail-on unknown`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringArrayVarP(&scanTemplates, "template", "t", nil, "Template file to scan (repeatable)")
	scanCmd.Flags().StringVar(&scanPolicyDir, "policy-dir", "", "Directory of custom Rego policies")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Output format: table, json")
	scanCmd.Flags().StringVar(&scanFailOn, "fail-on", "", "Verdict that fails the run: failed, unknown, never")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Concurrent rule evaluations")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyScanFlags(cfg)

	if len(cfg.Templates) == 0 {
		return fmt.Errorf("no templates: pass --template or set templates in the config file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := telemetry.NewLogger("cdkcheck")

	provider, shutdown, err := setupTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	rep, err := scanTemplatesOnce(ctx, cfg, logger, provider)
	if err != nil {
		return err
	}

	if err := writeReport(rep, cfg.Output.Format); err != nil {
		return err
	}

	if code := rep.ExitCode(cfg.Output.FailOn); code != 0 {
		shutdown()
		os.Exit(code)
	}
	return nil
}

func applyScanFlags(cfg *config.Config) {
	if len(scanTemplates) > 0 {
		cfg.Templates = scanTemplates
	}
	if scanPolicyDir != "" {
		cfg.PolicyDir = scanPolicyDir
	}
	if scanOutput != "" {
		cfg.Output.Format = scanOutput
	}
	if scanFailOn != "" {
		cfg.Output.FailOn = scanFailOn
	}
	if scanWorkers > 0 {
		cfg.Scan.Workers = scanWorkers
	}
}

// setupTelemetry builds the OTLP provider when an endpoint is
// configured. The returned shutdown func is always safe to call.
func setupTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Provider, func(), error) {
	if cfg.OTEL.Endpoint == "" {
		return nil, func() {}, nil
	}

	provider, err := telemetry.NewProvider(ctx, cfg.OTEL)
	if err != nil {
		return nil, nil, fmt.Errorf("setup telemetry: %w", err)
	}
	return provider, func() { _ = provider.Shutdown(context.Background()) }, nil
}

func setupPolicyEngine(ctx context.Context, cfg *config.Config, logger *telemetry.Logger) (*policy.Engine, error) {
	if cfg.PolicyDir == "" {
		return nil, nil
	}
	engine := policy.NewEngine(logger)
	if err := engine.LoadDir(ctx, cfg.PolicyDir); err != nil {
		return nil, err
	}
	return engine, nil
}

// scanTemplatesOnce runs the full catalog and any custom policies over
// every configured template.
func scanTemplatesOnce(ctx context.Context, cfg *config.Config, logger *telemetry.Logger, provider *telemetry.Provider) (*report.Report, error) {
	engine, err := setupPolicyEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := scanner.New(rules.Catalog(), cfg.Scan.Workers, logger, provider)
	rep := report.New()

	for _, path := range cfg.Templates {
		st, err := stack.Load(path)
		if err != nil {
			if provider != nil {
				provider.RecordError(ctx, path, "parse")
			}
			return nil, fmt.Errorf("load template %s: %w", path, err)
		}

		rep.Add(s.Scan(ctx, st)...)

		if engine == nil {
			continue
		}
		for _, r := range st.Resources {
			findings, err := engine.Evaluate(ctx, st.Name, r)
			if err != nil {
				if provider != nil {
					provider.RecordError(ctx, path, "policy")
				}
				return nil, fmt.Errorf("policy evaluation for %s: %w", r.LogicalID, err)
			}
			rep.Add(findings...)
		}
	}

	return rep, nil
}

func writeReport(rep *report.Report, format string) error {
	switch format {
	case "json":
		return rep.WriteJSON(os.Stdout)
	default:
		return rep.WriteTable(os.Stdout)
	}
}
