package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "lk",
		Usage: "Browse, search, export, and prune AI coding assistant sessions",
		Description: `
   _     _   _
  | |___| |_| |_  __ _
  | / -_) / / ' \/ _' |
  |_\___|_\_\_||_\__,_|

 The ledger of sessions — index and revisit what you built with your assistant.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			projectsCmd(),
			sessionsCmd(),
			showCmd(),
			searchCmd(),
			trashCmd(),
			exportCmd(),
			serveCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
