package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekha/compact"
	"github.com/sonnes/lekha/config"
	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/history"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/redact"
	"github.com/sonnes/lekha/render"
	htmlrender "github.com/sonnes/lekha/render/html"
	jsonrender "github.com/sonnes/lekha/render/json"
	"github.com/sonnes/lekha/render/markdown"
	"github.com/sonnes/lekha/render/terminal"
)

// app holds the loaded config plus store and renderer registries used by
// the commands. Stores are built lazily, one per CLI identity.
type app struct {
	cfg       config.Config
	stores    map[string]*history.Store
	renderers map[string]func() render.Renderer
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		stores: make(map[string]*history.Store),
		renderers: map[string]func() render.Renderer{
			"terminal": func() render.Renderer { return terminal.New() },
			"html":     func() render.Renderer { return htmlrender.New() },
			"markdown": func() render.Renderer { return markdown.New() },
			"json":     func() render.Renderer { return &jsonrender.Renderer{Indent: true} },
		},
	}, nil
}

// store returns the history store for a CLI identity, applying any root
// override from the config file.
func (a *app) store(cli string) (*history.Store, error) {
	if s, ok := a.stores[cli]; ok {
		return s, nil
	}
	l, err := layout.Resolve(cli)
	if err != nil {
		return nil, err
	}
	if root := a.cfg.Root(cli); root != "" {
		l.Root = root
	}
	s := history.NewStore(l, history.Options{
		CacheCapacity: a.cfg.CacheCapacity,
		RetentionDays: a.cfg.TrashRetentionDays,
	})
	a.stores[cli] = s
	return s, nil
}

func (a *app) renderer(name string) (render.Renderer, error) {
	fn, ok := a.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	return fn(), nil
}

// cliFlag is the shared flag selecting whose history a command works on.
func cliFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "cli",
		Usage: "Which assistant's history to use (claude, codex)",
		Value: layout.CLIClaude,
	}
}

// newRedactor builds a Redactor from CLI flags. Returns nil when --no-redact is set.
func newRedactor(cmd *cli.Command) (*redact.Redactor, error) {
	if cmd.Bool("no-redact") {
		return nil, nil
	}

	cfg := redact.Config{}
	rules := cmd.StringSlice("redact")

	if len(rules) == 0 {
		cfg.Secrets = true
		cfg.PII = true
	} else {
		for _, r := range rules {
			switch r {
			case "secrets":
				cfg.Secrets = true
			case "pii":
				cfg.PII = true
			default:
				return nil, fmt.Errorf("unknown redaction rule %q", r)
			}
		}
	}

	return redact.New(cfg), nil
}

// transforms assembles the transform chain a command's flags ask for.
func transforms(cmd *cli.Command) ([]core.Transformer, error) {
	var trs []core.Transformer

	r, err := newRedactor(cmd)
	if err != nil {
		return nil, err
	}
	if r != nil {
		trs = append(trs, r)
	}

	if v := cmd.String("compact"); v != "" {
		cfg := compact.Config{}
		if v == "no-thinking" {
			cfg.StripThinking = true
		}
		trs = append(trs, compact.New(cfg))
	}

	return trs, nil
}

// applyTransforms runs the chain on a clone. Details coming out of the
// store are cache-shared, so mutation must never touch the original.
func applyTransforms(d *core.SessionDetail, trs []core.Transformer) (*core.SessionDetail, error) {
	if len(trs) == 0 {
		return d, nil
	}
	c := d.Clone()
	if err := core.Chain(c, trs...); err != nil {
		return nil, err
	}
	return c, nil
}
