package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/history"
	"github.com/sonnes/lekha/trash"
)

func trashCmd() *cli.Command {
	return &cli.Command{
		Name:  "trash",
		Usage: "Soft-delete sessions and manage the trash",
		Commands: []*cli.Command{
			trashListCmd(),
			trashRmCmd(),
			trashRestoreCmd(),
			trashSweepCmd(),
		},
	}
}

func trashListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List trashed sessions, newest deletions first",
		Flags: []cli.Flag{cliFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			s, err := a.store(cmd.String("cli"))
			if err != nil {
				return err
			}

			records, err := s.TrashRecords()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("Trash is empty.")
				return nil
			}

			width := 0
			for _, rec := range records {
				if len(rec.SessionID) > width {
					width = len(rec.SessionID)
				}
			}
			for _, rec := range records {
				fmt.Printf("%-*s  %s  deleted %s\n",
					width, rec.SessionID, rec.ProjectKey, core.RelativeTime(rec.DeletedAt))
			}
			return nil
		},
	}
}

func trashRmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Move sessions to the trash",
		ArgsUsage: "<session-id>...",
		Flags: []cli.Flag{
			cliFlag(),
			&cli.BoolFlag{
				Name:  "purge",
				Usage: "Permanently delete already-trashed sessions instead",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				return fmt.Errorf("at least one session id required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			s, err := a.store(cmd.String("cli"))
			if err != nil {
				return err
			}

			if cmd.Bool("purge") {
				return purgeRecords(s, ids, cmd.Bool("yes"))
			}

			if !cmd.Bool("yes") {
				prompt := fmt.Sprintf("Move %d %s to trash?", len(ids), plural(len(ids), "session"))
				if !confirm(prompt) {
					fmt.Println("Aborted.")
					return nil
				}
			}

			moved := s.Trash(ctx, ids)
			fmt.Printf("Trashed %d of %d %s.\n", moved, len(ids), plural(len(ids), "session"))
			if moved < len(ids) {
				return fmt.Errorf("%d %s could not be trashed (run with --log=warn for details)",
					len(ids)-moved, plural(len(ids)-moved, "session"))
			}
			return nil
		},
	}
}

// purgeRecords permanently deletes trashed sessions. Every id must already
// be in the trash; purging something still live is refused.
func purgeRecords(s *history.Store, ids []string, skipConfirm bool) error {
	records, err := s.TrashRecords()
	if err != nil {
		return err
	}
	recs, err := pickRecords(records, ids)
	if err != nil {
		return err
	}

	if !skipConfirm {
		prompt := fmt.Sprintf("Permanently delete %d %s from trash? This cannot be undone.",
			len(recs), plural(len(recs), "session"))
		if !confirm(prompt) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	for _, rec := range recs {
		if err := s.PurgeRecord(rec); err != nil {
			return fmt.Errorf("purge %s: %w", rec.SessionID, err)
		}
	}
	fmt.Printf("Purged %d %s.\n", len(recs), plural(len(recs), "session"))
	return nil
}

// pickRecords maps session ids to their trash records. Records come newest
// deletions first, so an id trashed more than once picks its latest copy.
func pickRecords(records []trash.Record, ids []string) ([]trash.Record, error) {
	byID := make(map[string]trash.Record, len(records))
	for _, rec := range records {
		if _, ok := byID[rec.SessionID]; !ok {
			byID[rec.SessionID] = rec
		}
	}
	out := make([]trash.Record, 0, len(ids))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("session %q is not in the trash", id)
		}
		out = append(out, rec)
	}
	return out, nil
}

func trashRestoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Return a trashed session to its original location",
		ArgsUsage: "<session-id>",
		Flags:     []cli.Flag{cliFlag()},
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

			records, err := s.TrashRecords()
			if err != nil {
				return err
			}
			recs, err := pickRecords(records, []string{id})
			if err != nil {
				return err
			}

			if err := s.Restore(recs[0]); err != nil {
				return err
			}
			fmt.Printf("Restored %s to %s.\n", id, recs[0].OriginalPath)
			return nil
		},
	}
}

func trashSweepCmd() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Purge trashed sessions older than the retention window",
		Flags: []cli.Flag{
			cliFlag(),
			&cli.IntFlag{
				Name:  "days",
				Usage: "Retention window in days (0 empties the trash now)",
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

			days := int(cmd.Int("days"))
			if !cmd.IsSet("days") {
				days = a.cfg.TrashRetentionDays
				if days <= 0 {
					days = history.DefaultRetentionDays
				}
			}

			n, err := s.SweepTrash(days)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d expired %s.\n", n, plural(n, "session"))
			return nil
		},
	}
}

// confirm prints a prompt and reads a y/N answer from stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}
