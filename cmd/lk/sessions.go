package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekha/core"
)

func sessionsCmd() *cli.Command {
	return &cli.Command{
		Name:      "sessions",
		Usage:     "List one project's sessions, newest first",
		ArgsUsage: "[project]",
		Description: `Lists the sessions of one project. The project may be named by its key
(as printed by 'lk projects') or by an absolute working directory. With
no argument the current directory's project is used.`,
		Flags: []cli.Flag{
			cliFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Keep only the N most recent sessions",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			s, err := a.store(cmd.String("cli"))
			if err != nil {
				return err
			}

			project := cmd.Args().First()
			if project == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				project = cwd
			}

			sessions := s.Sessions(ctx, project)
			if limit := int(cmd.Int("limit")); limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}
			if len(sessions) == 0 {
				fmt.Printf("No sessions for %s.\n", project)
				return nil
			}
			printSessions(sessions)
			return nil
		},
	}
}

func printSessions(sessions []core.SessionSummary) {
	width := 0
	for _, sum := range sessions {
		if len(sum.ID) > width {
			width = len(sum.ID)
		}
	}
	for _, sum := range sessions {
		fmt.Printf("%-*s  %4d msgs  %3d turns  %s\n",
			width, sum.ID,
			sum.MessageCount, sum.RealTurns,
			core.RelativeTime(sum.LastAt))
	}
}
