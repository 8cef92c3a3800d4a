package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/icetype"
)

// loadConfig loads the --config file, or the nearest .icetype.yaml above the
// working directory. A missing config is not an error.
func loadConfig(cmd *cli.Command) (*icetype.Config, error) {
	if path := cmd.Root().String("config"); path != "" {
		return icetype.LoadConfigFile(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}

	cfg, err := icetype.LoadConfig(cwd)
	if errors.Is(err, icetype.ErrConfigNotFound) {
		return &icetype.Config{}, nil
	}

	return cfg, err
}

// newLogger builds a development logger on stderr. --debug wins over the
// configured level.
func newLogger(cmd *cli.Command, cfg *icetype.Config) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if cfg.Log.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}

		config.Level = zap.NewAtomicLevelAt(level)
	}

	if cmd.Root().Bool("debug") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

// inputPaths returns the command arguments, the configured paths, or ".".
func inputPaths(cmd *cli.Command, cfg *icetype.Config) []string {
	if args := cmd.Args().Slice(); len(args) > 0 {
		return args
	}

	if paths := cfg.ResolvedPaths(); len(paths) > 0 {
		return paths
	}

	return []string{"."}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
