// Command chronoflow runs the matrix workload on a chronoflow worker pool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vnykmshr/chronoflow/internal/config"
	"github.com/vnykmshr/chronoflow/internal/demo"
	"github.com/vnykmshr/chronoflow/internal/logging"
	"github.com/vnykmshr/chronoflow/pkg/metrics"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/workerpool"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "chronoflow",
		Short:         "Run time-ordered tasks on a fixed worker pool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMatrixCommand(), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "chronoflow", version)
		},
	}
}

func newMatrixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Fill, sum and normalize a random matrix, one task per row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), cmd.Flags())
			if err != nil {
				return err
			}
			return runMatrix(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runMatrix(ctx context.Context, out io.Writer, cfg config.Configuration) error {
	flush, err := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer flush()
	log := zap.S().Named("chronoflow")

	poolConfig := cfg.PoolConfig()
	if cfg.MetricsAddr != "" {
		poolConfig.Metrics = metrics.Config{Enabled: true}
		srv := serveMetrics(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	pool, err := workerpool.NewWithConfig(poolConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Infow("running matrix workload", "size", cfg.Size, "workers", pool.Size(), "seed", seed)

	report, err := demo.RunMatrix(ctx, pool, cfg.Size, seed)
	if err != nil {
		return err
	}

	label := color.New(color.FgCyan).SprintFunc()
	value := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", label("Sum of all elements in a random matrix:"), value(report.RandomSum))
	fmt.Fprintf(out, "%s %s\n", label("Sum of all normalized rows in a random matrix:"), value(report.NormalizedSum))
	fmt.Fprintf(out, "%s %s\n", label("Elapsed:"), value(report.Elapsed.Round(time.Microsecond)))

	log.Infow("matrix workload finished",
		"completed", pool.TotalCompleted(),
		"deferred", pool.TotalDeferred(),
		"elapsed", report.Elapsed)
	return nil
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Named("chronoflow").Errorw("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}
