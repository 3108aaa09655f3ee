package command

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripemap-go/internal/telemetry/logger"
	"github.com/yndnr/stripemap-go/internal/verify"
)

// VerifyCommand returns the verify subcommand.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Run the correctness harness (sequential checks, then concurrent insert/verify)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of concurrent inserters",
			},
			&cli.IntFlag{
				Name:  "keys",
				Usage: "Disjoint keys inserted per worker",
			},
			&cli.IntFlag{
				Name:  "buckets",
				Usage: "Bucket count of the map under test",
			},
		},
		Action: runVerify,
	}
}

func runVerify(c *cli.Context) error {
	cfg := appConfig(c).Verify
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("keys") {
		cfg.KeysPerWorker = c.Int("keys")
	}
	if c.IsSet("buckets") {
		cfg.Buckets = c.Int("buckets")
	}

	log := logger.Default()
	log.Info("correctness harness starting",
		"workers", cfg.Workers, "keys_per_worker", cfg.KeysPerWorker)

	report, err := verify.Run(c.Context, cfg)
	if err != nil {
		return err
	}

	if c.String("output") == "json" {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if !report.Passed() {
			return cli.Exit(fmt.Sprintf("%d checks failed", len(report.Failed())), 1)
		}
		return nil
	}
	for _, s := range report.Steps {
		mark := "ok"
		if !s.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(c.App.Writer, "%-4s %s", mark, s.Name)
		if s.Detail != "" {
			fmt.Fprintf(c.App.Writer, ": %s", s.Detail)
		}
		fmt.Fprintln(c.App.Writer)
	}

	if !report.Passed() {
		return cli.Exit(fmt.Sprintf("%d checks failed", len(report.Failed())), 1)
	}

	fmt.Fprintf(c.App.Writer, "all %d checks passed\n", len(report.Steps))
	return nil
}
