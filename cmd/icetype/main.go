// Command icetype parses and checks IceType schema files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	// Register output formats.
	_ "github.com/rlch/icetype/emitters"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "icetype",
		Usage: "Parse and check IceType schema files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to .icetype.yaml (default: search upwards from cwd)",
				Sources: cli.EnvVars("ICETYPE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			parseCommand(),
			checkCommand(),
			tokensCommand(),
			fieldCommand(),
			relationCommand(),
		},
	}
}
