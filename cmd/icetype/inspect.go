package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rlch/icetype"
)

// ErrMissingExpression is returned when an inspect command gets no argument.
var ErrMissingExpression = errors.New("missing expression argument")

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print the token stream of an expression",
		ArgsUsage: "<expression>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			expr, err := expressionArg(cmd)
			if err != nil {
				return err
			}

			writeTokens(cmd.Root().Writer, icetype.Tokenize(expr))

			return nil
		},
	}
}

func fieldCommand() *cli.Command {
	return &cli.Command{
		Name:      "field",
		Usage:     "Parse a field type expression and print it as JSON",
		ArgsUsage: "<expression>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			expr, err := expressionArg(cmd)
			if err != nil {
				return err
			}

			field, err := icetype.ParseField(expr)
			if err != nil {
				return err
			}

			return writeJSON(cmd.Root().Writer, field)
		},
	}
}

func relationCommand() *cli.Command {
	return &cli.Command{
		Name:      "relation",
		Usage:     "Parse a relation expression and print it as JSON",
		ArgsUsage: "<expression>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			expr, err := expressionArg(cmd)
			if err != nil {
				return err
			}

			rel, err := icetype.ParseRelation(expr)
			if err != nil {
				return err
			}

			return writeJSON(cmd.Root().Writer, rel)
		},
	}
}

// expressionArg joins the arguments, so unquoted "decimal(10, 2)" works.
func expressionArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() == 0 {
		return "", ErrMissingExpression
	}

	return strings.Join(cmd.Args().Slice(), " "), nil
}

func writeTokens(w io.Writer, tokens []icetype.Token) {
	for _, tok := range tokens {
		_, _ = fmt.Fprintf(w, "%d:%d\t%-10s\t%q\n", tok.Line(), tok.Column(), tok.Kind, tok.Text)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
