package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekha/index"
)

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find projects by keyword and activity window",
		ArgsUsage: "[keyword]",
		Flags: []cli.Flag{
			cliFlag(),
			&cli.StringFlag{
				Name:    "keyword",
				Aliases: []string{"k"},
				Usage:   "Substring to match against project paths",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "Only projects active on or after this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  "until",
				Usage: "Only projects active on or before this date (YYYY-MM-DD)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			keyword := cmd.String("keyword")
			if keyword == "" {
				keyword = cmd.Args().First()
			}
			since, err := parseDay(cmd.String("since"), false)
			if err != nil {
				return err
			}
			until, err := parseDay(cmd.String("until"), true)
			if err != nil {
				return err
			}
			if keyword == "" && since.IsZero() && until.IsZero() {
				return fmt.Errorf("a keyword or a --since/--until window is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			s, err := a.store(cmd.String("cli"))
			if err != nil {
				return err
			}

			projects := s.Search(ctx, index.Filter{
				Keyword: keyword,
				Since:   since,
				Until:   until,
			})
			printProjects(projects)
			return nil
		},
	}
}

// parseDay parses a YYYY-MM-DD date. End dates extend to the last instant
// of the day so --until is inclusive.
func parseDay(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want YYYY-MM-DD)", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
