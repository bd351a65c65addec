package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/heartmarshall/calc-content-backend/internal/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Validate the configuration, or list the environment variables it reads",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file (defaults to CONFIG_PATH)",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.BoolFlag{
				Name:  "env",
				Usage: "print supported environment variables and exit",
			},
		},
		Action: configAction,
	}
}

func configAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("env") {
		return config.Describe(out(cmd))
	}

	cfg, err := config.LoadFile(cmd.String("config"))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "listen\t%s\n", cfg.Server.Addr())
	fmt.Fprintf(tw, "cache_ttl\t%s\n", cfg.Cache.TTL)
	fmt.Fprintf(tw, "use_precomputed\t%t\n", cfg.Dropdowns.UsePrecomputed)
	fmt.Fprintf(tw, "fallback_language\t%s\n", cfg.Dropdowns.FallbackLanguage)
	fmt.Fprintf(tw, "allowed_types\t%v\n", cfg.Dropdowns.AllowedTypes)
	fmt.Fprintf(tw, "db_read_only\t%t\n", cfg.Database.ReadOnly)
	fmt.Fprintf(tw, "rate_limit\t%t (%d/min, burst %d)\n",
		cfg.RateLimit.Enabled, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	return tw.Flush()
}
