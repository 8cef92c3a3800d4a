package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/rlch/icetype/analysis"
	"github.com/rlch/icetype/loader"
)

// ErrCheckFailed is returned when any file fails to parse or any error-level
// diagnostic is reported.
var ErrCheckFailed = errors.New("schema check failed")

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Parse schema files and validate them against each other",
		ArgsUsage: "[files or directories...]",
		Action:    runCheck,
	}
}

func runCheck(_ context.Context, cmd *cli.Command) error {
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

	paths, err := loader.Discover(inputPaths(cmd, cfg), cfg.SchemaExtensions())
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		return ErrNoSchemaFiles
	}

	r := newRenderer(cmd.Root().ErrWriter)
	l := loader.NewLoader(logger)

	var (
		inputs []*analysis.Input
		failed int
	)

	// Load files one by one so every broken file is reported, not just the first.
	for _, path := range paths {
		file, err := l.Load(path)
		if err != nil {
			r.loadError(err)

			failed++

			continue
		}

		for i, schema := range file.Schemas {
			inputs = append(inputs, &analysis.Input{
				Path:   path,
				Schema: schema,
				Record: file.Records[i],
			})
		}
	}

	set := analysis.NewAnalyzer().Analyze(inputs)
	for _, d := range set.Diagnostics {
		r.diagnostic(d)
	}

	r.summary(len(paths), len(inputs), failed, set.Diagnostics)

	if failed > 0 || set.HasErrors() {
		return ErrCheckFailed
	}

	return nil
}
