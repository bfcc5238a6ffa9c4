package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Nelson-Lamounier/cdk-monitoring/config"
	"github.com/Nelson-Lamounier/cdk-monitoring/rules"
	"github.com/Nelson-Lamounier/cdk-monitoring/telemetry"
)

var (
	watchTemplates   []string
	watchPolicyDir   string
	watchInterval    time.Duration
	watchMetricsAddr string
	watchWorkers     int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescan templates on an interval and expose metrics",
	Long: `Watch rescans the configured templates on a fixed interval and
exposes verdict counters on a Prometheus /metrics endpoint. Useful
while iterating on a stack locally, or as a drift alarm for a template
directory that deploy tooling keeps in sync.`,
	Example: `  cdkcheck watch --template cdk.out/stack.template.json
  cdkcheck watch --template stack.yaml --interval 30s --metrics :9464`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringArrayVarP(&watchTemplates, "template", "t", nil, "Template file to watch (repeatable)")
	watchCmd.Flags().StringVar(&watchPolicyDir, "policy-dir", "", "Directory of custom Rego policies")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Rescan interval")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics", ":9464", "Metrics server address")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 0, "Concurrent rule evaluations")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyWatchFlags(cfg)

	if len(cfg.Templates) == 0 {
		return fmt.Errorf("no templates: pass --template or set templates in the config file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := telemetry.NewLogger("cdkcheck-watch")

	provider, err := telemetry.NewPrometheusProvider(ctx, cfg.OTEL.ServiceName)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	var g run.Group

	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	addMetricsServer(&g, logger, watchMetricsAddr)
	addScanLoop(ctx, &g, cfg, logger, provider)

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		logger.Info().Str("signal", sig.Signal.String()).Msg("shutting down")
		return nil
	}
	return err
}

func applyWatchFlags(cfg *config.Config) {
	if len(watchTemplates) > 0 {
		cfg.Templates = watchTemplates
	}
	if watchPolicyDir != "" {
		cfg.PolicyDir = watchPolicyDir
	}
	if watchInterval > 0 {
		cfg.Scan.Interval = watchInterval
	}
	if watchWorkers > 0 {
		cfg.Scan.Workers = watchWorkers
	}
}

func addMetricsServer(g *run.Group, logger *telemetry.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Add(func() error {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
}

func addScanLoop(ctx context.Context, g *run.Group, cfg *config.Config, logger *telemetry.Logger, provider *telemetry.Provider) {
	loopCtx, cancel := context.WithCancel(ctx)

	g.Add(func() error {
		scanOnce := func() {
			rep, err := scanTemplatesOnce(loopCtx, cfg, logger, provider)
			if err != nil {
				logger.Error().Err(err).Msg("scan failed")
				return
			}
			counts := rep.Counts()
			logger.Info().
				Int("checks", rep.Len()).
				Int("failed", counts[rules.VerdictFailed]).
				Int("unknown", counts[rules.VerdictUnknown]).
				Msg("rescan complete")
		}

		scanOnce()

		ticker := time.NewTicker(cfg.Scan.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				scanOnce()
			case <-loopCtx.Done():
				return nil
			}
		}
	}, func(error) {
		cancel()
	})
}
