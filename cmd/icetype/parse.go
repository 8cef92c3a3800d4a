package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/icetype"
	"github.com/rlch/icetype/loader"
)

// ErrNoSchemaFiles is returned when discovery finds nothing to load.
var ErrNoSchemaFiles = errors.New("no schema files found")

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse schema files and print the assembled schemas",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format (json, yaml)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file (default: stdout)",
			},
			&cli.BoolFlag{
				Name:  "no-timestamps",
				Usage: "omit createdAt and updatedAt",
			},
		},
		Action: runParse,
	}
}

func runParse(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	format := firstNonEmpty(cmd.String("format"), cfg.Emit.Format, "json")
	outPath := firstNonEmpty(cmd.String("out"), cfg.Emit.Out)

	emitter, err := icetype.NewEmitter(format, icetype.EmitterConfig{
		OmitTimestamps: cmd.Bool("no-timestamps"),
	})
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, icetype.RegisteredEmitters())
	}

	paths, err := loader.Discover(inputPaths(cmd, cfg), cfg.SchemaExtensions())
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return ErrNoSchemaFiles
	}

	logger.Debug("discovered schema files", zap.Int("count", len(paths)))

	files, err := loader.NewLoader(logger).LoadAll(ctx, paths)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}

		defer func() {
			_ = f.Close()
		}()

		w = f
	}

	return emitter.Emit(w, loader.Schemas(files))
}
