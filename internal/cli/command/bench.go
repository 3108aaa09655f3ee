package command

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripemap-go/internal/bench"
	"github.com/yndnr/stripemap-go/internal/telemetry/logger"
	"github.com/yndnr/stripemap-go/internal/telemetry/metric"
	"github.com/yndnr/stripemap-go/pkg/stripemap"
)

// BenchCommand returns the bench subcommand.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run the mixed read/write benchmark against the striped map",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of concurrent workers",
			},
			&cli.IntFlag{
				Name:  "ops",
				Usage: "Operations per worker",
			},
			&cli.Float64Flag{
				Name:  "read-ratio",
				Usage: "Fraction of operations that are reads, in [0,1]",
			},
			&cli.IntFlag{
				Name:  "key-space",
				Usage: "Number of distinct keys in the workload",
			},
			&cli.IntFlag{
				Name:  "prefill",
				Usage: "Keys inserted before timing starts",
			},
			&cli.IntFlag{
				Name:  "buckets",
				Usage: "Bucket count of the striped map",
			},
			&cli.IntFlag{
				Name:  "rate-limit",
				Usage: "Cap on total operations per second (0 = unlimited)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Base PRNG seed for repeatable runs",
			},
			&cli.BoolFlag{
				Name:  "baseline",
				Usage: "Also run the single-global-lock baseline for comparison",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "Serve Prometheus /metrics on this address during the run",
			},
		},
		Action: runBench,
	}
}

func runBench(c *cli.Context) error {
	cfg := appConfig(c).Bench
	applyBenchFlags(c, &cfg)

	opts := []bench.RunnerOption{bench.WithLogger(logger.Default())}

	var registry *metric.Registry
	if addr := c.String("metrics-listen"); addr != "" {
		registry = metric.NewRegistry()
		opts = append(opts, bench.WithMetrics(registry))
		if err := serveMetrics(addr, registry); err != nil {
			return err
		}
	}

	runner, err := bench.NewRunner(cfg, opts...)
	if err != nil {
		return err
	}

	striped := stripemap.NewWithBuckets[string, uint64](cfg.Buckets)
	results := []*bench.Result{}

	result, err := runner.Run(c.Context, "striped", striped)
	if err != nil {
		return err
	}
	results = append(results, result)

	if checked, err := bench.VerifyDerived(striped, cfg.KeySpace); err != nil {
		return fmt.Errorf("post-run verification (%d keys checked): %w", checked, err)
	}

	if c.Bool("baseline") {
		baseline, err := runner.Run(c.Context, "baseline", bench.NewMutexMap())
		if err != nil {
			return err
		}
		results = append(results, baseline)
	}

	return printResults(c, results)
}

// applyBenchFlags overlays set flags onto the resolved config.
func applyBenchFlags(c *cli.Context, cfg *bench.Config) {
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("ops") {
		cfg.OpsPerWorker = c.Int("ops")
	}
	if c.IsSet("read-ratio") {
		cfg.ReadRatio = c.Float64("read-ratio")
	}
	if c.IsSet("key-space") {
		cfg.KeySpace = c.Int("key-space")
	}
	if c.IsSet("prefill") {
		cfg.Prefill = c.Int("prefill")
	}
	if c.IsSet("buckets") {
		cfg.Buckets = c.Int("buckets")
	}
	if c.IsSet("rate-limit") {
		cfg.RateLimit = c.Int("rate-limit")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Int64("seed")
	}
}

// serveMetrics starts the /metrics listener in the background. The
// listener dies with the process; bench runs are one-shot.
func serveMetrics(addr string, registry *metric.Registry) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

// printResults renders results in the requested output format and, when
// both targets ran, the relative throughput.
func printResults(c *cli.Context, results []*bench.Result) error {
	if c.String("output") == "json" {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Fprintln(c.App.Writer, r)
	}
	if len(results) == 2 && results[1].OpsPerSec > 0 {
		fmt.Fprintf(c.App.Writer, "striped/baseline throughput: %.2fx\n",
			results[0].OpsPerSec/results[1].OpsPerSec)
	}
	return nil
}
