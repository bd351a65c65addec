package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
	"github.com/heartmarshall/calc-content-backend/internal/dropdown/keypattern"
)

func explainCmd() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Show how content keys resolve to fields and options",
		ArgsUsage: "KEY [KEY...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "screen",
				Aliases:  []string{"s"},
				Usage:    "screen location the keys belong to",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "role",
				Aliases: []string{"r"},
				Usage:   "component role or type: container, option, label, placeholder",
				Value:   "option",
			},
			&cli.StringFlag{
				Name:    "known",
				Aliases: []string{"k"},
				Usage:   "comma-separated field names already declared on the screen",
			},
		},
		Action: explainAction,
	}
}

func explainAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("at least one content key is required")
	}

	role := domain.ParseComponentRole(cmd.String("role"))
	if role == domain.RoleUnknown {
		return fmt.Errorf("unknown role %q", cmd.String("role"))
	}

	known := make(map[string]struct{})
	for _, f := range strings.Split(cmd.String("known"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			known[f] = struct{}{}
		}
	}

	screen := cmd.String("screen")
	resolver := keypattern.New()

	tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tRULE\tFIELD\tOPTION\tDROPDOWN")
	for _, key := range cmd.Args().Slice() {
		res, ok := resolver.Resolve(keypattern.Input{
			Screen:      screen,
			Key:         key,
			Role:        role,
			KnownFields: known,
		})
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-\tunresolved\n", key)
			continue
		}
		option := res.OptionValue
		if option == "" {
			option = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			key, res.Rule, res.FieldName, option, domain.DropdownKey(screen, res.FieldName))
	}
	return tw.Flush()
}
