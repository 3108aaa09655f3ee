// Package command provides CLI command definitions for stripemap.
//
// It uses urfave/cli/v2 for command parsing. Configuration resolves in
// the order flag > environment (STRIPEMAP_*) > YAML file > defaults.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/stripemap-go/internal/bench"
	"github.com/yndnr/stripemap-go/internal/infra/buildinfo"
	"github.com/yndnr/stripemap-go/internal/infra/confloader"
	"github.com/yndnr/stripemap-go/internal/telemetry/logger"
	"github.com/yndnr/stripemap-go/internal/verify"
)

// configKey is the app metadata key holding the resolved AppConfig.
const configKey = "appConfig"

// AppConfig is the full configuration tree for the stripemap CLI.
type AppConfig struct {
	Bench  bench.Config  `koanf:"bench"`
	Verify verify.Config `koanf:"verify"`
	Log    LogConfig     `koanf:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultAppConfig returns the configuration defaults.
func defaultAppConfig() AppConfig {
	return AppConfig{
		Bench:  bench.DefaultConfig(),
		Verify: verify.DefaultConfig(),
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "stripemap",
		Usage:   "Lock-striped concurrent map benchmark and verification tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			BenchCommand(),
			VerifyCommand(),
			VersionCommand(),
		},
		Before: setup,
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file",
			EnvVars: []string{"STRIPEMAP_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"STRIPEMAP_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format: text, json",
			EnvVars: []string{"STRIPEMAP_LOG_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json",
			Value:   "text",
		},
	}
}

// setup resolves configuration and installs the logger before any
// command action runs.
func setup(c *cli.Context) error {
	cfg := defaultAppConfig()

	opts := []confloader.Option{}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	if err := confloader.NewLoader(opts...).Load(&cfg); err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}

	// Flags override file and environment.
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	c.App.Metadata[configKey] = &cfg
	return nil
}

// appConfig returns the resolved configuration for a command action.
func appConfig(c *cli.Context) *AppConfig {
	if cfg, ok := c.App.Metadata[configKey].(*AppConfig); ok {
		return cfg
	}
	cfg := defaultAppConfig()
	return &cfg
}
