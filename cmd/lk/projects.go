package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/history"
)

func projectsCmd() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "List projects with session history, most recently active first",
		Flags: []cli.Flag{
			cliFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Keep only the N most recently active projects",
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

			projects := s.Projects(ctx, history.ProjectOptions{
				Limit:      int(cmd.Int("limit")),
				ResolveCWD: true,
			})
			printProjects(projects)
			return nil
		},
	}
}

func printProjects(projects []core.Project) {
	if len(projects) == 0 {
		fmt.Println("No sessions found.")
		return
	}
	width := 0
	for _, p := range projects {
		if len(p.Key) > width {
			width = len(p.Key)
		}
	}
	for _, p := range projects {
		fmt.Printf("%-*s  %4d %-8s  %s\n",
			width, p.Key,
			p.SessionCount, plural(p.SessionCount, "session"),
			core.RelativeTime(p.LastActivity))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
