package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/history"
	htmlrender "github.com/sonnes/lekha/render/html"
	"github.com/sonnes/lekha/scan"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write sessions to files as markdown, html, or json",
		Flags: []cli.Flag{
			cliFlag(),
			&cli.StringFlag{
				Name:  "session",
				Usage: "Session ID to export",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every session (html exports also get an index page)",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"o"},
				Usage:   "Output format: markdown, html, json",
				Value:   "markdown",
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
				Usage: "Enable compact mode. Use --compact=no-thinking to also strip thinking blocks",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session := cmd.String("session")
			all := cmd.Bool("all")

			n := 0
			if session != "" {
				n++
			}
			if all {
				n++
			}
			if n == 0 {
				return fmt.Errorf("one of --session or --all is required")
			}
			if n > 1 {
				return fmt.Errorf("only one of --session or --all may be specified")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			s, err := a.store(cmd.String("cli"))
			if err != nil {
				return err
			}

			format := cmd.String("format")
			if _, err := a.renderer(format); err != nil {
				return err
			}
			trs, err := transforms(cmd)
			if err != nil {
				return err
			}

			dir := cmd.String("dir")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			if session != "" {
				return a.exportOne(ctx, s, session, dir, format, trs)
			}
			return a.exportAll(ctx, s, cmd.String("cli"), dir, format, trs)
		},
	}
}

func (a *app) exportOne(ctx context.Context, s *history.Store, sessionID, dir, format string, trs []core.Transformer) error {
	d, err := s.Detail(ctx, sessionID)
	if err != nil {
		return err
	}
	d, err = applyTransforms(d, trs)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, d.ID+formatExtension(format))
	if err := a.writeSession(path, format, d); err != nil {
		return err
	}
	fmt.Printf("Exported %s\n", path)
	return nil
}

// exportAll writes one file per session plus, for html, an index page linking
// them. Sessions are parsed fresh rather than through the cache: an export
// touches every file once and would otherwise evict the whole working set.
func (a *app) exportAll(ctx context.Context, s *history.Store, cliName, dir, format string, trs []core.Transformer) error {
	projects := s.Projects(ctx, history.ProjectOptions{ResolveCWD: true})

	exported, skipped := 0, 0
	for _, p := range projects {
		for _, sum := range p.Sessions {
			d, err := scan.Parse(sum.Path, s.Layout.Kind)
			if err != nil {
				log.Warn("skipping session", "id", sum.ID, "err", err)
				skipped++
				continue
			}
			d.ProjectKey = p.Key

			d, err = applyTransforms(d, trs)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, d.ID+formatExtension(format))
			if err := a.writeSession(path, format, d); err != nil {
				return err
			}
			exported++
		}
	}

	if format == "html" {
		path := filepath.Join(dir, "index.html")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		hr := htmlrender.New()
		if err := hr.RenderIndex(f, cliName+" sessions", projects); err != nil {
			f.Close()
			return fmt.Errorf("render index: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	fmt.Printf("Exported %d %s to %s", exported, plural(exported, "session"), dir)
	if skipped > 0 {
		fmt.Printf(" (%d skipped)", skipped)
	}
	fmt.Println()
	return nil
}

func (a *app) writeSession(path, format string, d *core.SessionDetail) error {
	rnd, err := a.renderer(format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rnd.Render(f, d); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", d.ID, err)
	}
	return f.Close()
}

// formatExtension maps a render format to its file extension.
func formatExtension(format string) string {
	switch format {
	case "html":
		return ".html"
	case "markdown":
		return ".md"
	case "json":
		return ".json"
	default:
		return "." + format
	}
}
