// Command dropdownctl is an operator tool for the dropdown content engine.
//
//	dropdownctl explain --screen mortgage_step1 --role option mortgage_step1.field.type_house
//	dropdownctl resolve --config config.yaml mortgage_step1 he
//	dropdownctl config --env
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/heartmarshall/calc-content-backend/internal/app"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "dropdownctl",
		Version: app.Version,
		Usage:   "Inspect dropdown resolution",
		Commands: []*cli.Command{
			explainCmd(),
			resolveCmd(),
			configCmd(),
			{
				Name:  "version",
				Usage: "Print the version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintf(out(cmd), "dropdownctl %s\n", app.BuildVersion())
					return err
				},
			},
		},
	}
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
