package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one full session",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			cliFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"o"},
				Usage:   "Output format: terminal, html, markdown, json",
				Value:   "terminal",
			},
			&cli.BoolFlag{
				Name:  "no-redact",
				Usage: "Disable redaction of secrets and PII",
			},
			&cli.StringSliceFlag{
				Name:  "redact",
				Usage: "Allowlist of rules to redact. Example: --redact=secrets,pii",
			},
			&cli.StringFlag{
				Name:  "compact",
				Usage: "Collapse verbose tool content. Use --compact=no-thinking to also strip thinking blocks",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("session id required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			s, err := a.store(cmd.String("cli"))
			if err != nil {
				return err
			}

			d, err := s.Detail(ctx, id)
			if err != nil {
				return err
			}

			trs, err := transforms(cmd)
			if err != nil {
				return err
			}
			d, err = applyTransforms(d, trs)
			if err != nil {
				return err
			}

			rnd, err := a.renderer(cmd.String("format"))
			if err != nil {
				return err
			}
			return rnd.Render(os.Stdout, d)
		},
	}
}
