package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/heartmarshall/calc-content-backend/internal/adapter/postgres"
	"github.com/heartmarshall/calc-content-backend/internal/app"
	"github.com/heartmarshall/calc-content-backend/internal/config"
	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve the dropdowns of a screen against the content store and print them as JSON",
		ArgsUsage: "SCREEN LANGUAGE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file (defaults to CONFIG_PATH)",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.BoolFlag{
				Name:  "precomputed",
				Usage: "consult dropdown_configs before content rows",
			},
		},
		Action: resolveAction,
	}
}

type resolveOutput struct {
	Screen           string                     `json:"screen_location"`
	Language         string                     `json:"language_code"`
	Source           string                     `json:"source"`
	ProcessingTimeMs float64                    `json:"processing_time_ms"`
	Dropdowns        []domain.AssembledDropdown `json:"dropdowns"`
}

func resolveAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: resolve SCREEN LANGUAGE")
	}

	cfg, err := config.LoadFile(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("precomputed") {
		cfg.Dropdowns.UsePrecomputed = cmd.Bool("precomputed")
	}

	logger := app.NewLogger(cfg.Log)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	svc := app.NewDropdownService(cfg, logger, pool)

	res, err := svc.Resolve(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resolveOutput{
		Screen:           res.Screen,
		Language:         res.Language,
		Source:           res.Source.String(),
		ProcessingTimeMs: res.ProcessingTimeMs(),
		Dropdowns:        res.Dropdowns,
	})
}
