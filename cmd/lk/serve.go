package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/history"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/redact"
	htmlrender "github.com/sonnes/lekha/render/html"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve sessions for browsing in a local web UI",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: 8080,
			},
			&cli.BoolFlag{
				Name:  "no-redact",
				Usage: "Disable redaction of secrets and PII",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			stores := make(map[string]*history.Store)
			for _, name := range layout.CLIs() {
				s, err := a.store(name)
				if err != nil {
					return err
				}
				stores[name] = s
			}

			redactor, err := newRedactor(cmd)
			if err != nil {
				return err
			}

			srv := &server{
				stores:   stores,
				base:     htmlrender.New(),
				redactor: redactor,
			}

			addr := fmt.Sprintf(":%d", cmd.Int("port"))
			slog.Info("serving", "addr", "http://localhost"+addr)
			return http.ListenAndServe(addr, withRequestLog(srv.routes()))
		},
	}
}

// server renders pages on the fly from the per-CLI stores. Handlers take
// shallow copies of the base renderer to install route-aware link functions;
// the parsed templates and goldmark instance underneath are shared.
type server struct {
	stores   map[string]*history.Store
	base     *htmlrender.Renderer
	redactor *redact.Redactor
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /{cli}/projects", s.handleProjects)
	mux.HandleFunc("GET /{cli}/project/{key}", s.handleProject)
	mux.HandleFunc("GET /{cli}/session/{id}", s.handleSession)
	return mux
}

// handleHome merges every CLI's projects into one listing, most recent
// activity first. Session links need the owning CLI, which the merged
// listing no longer carries, so ownership is tracked per id and key.
func (s *server) handleHome(w http.ResponseWriter, req *http.Request) {
	var projects []core.Project
	sessionOwner := make(map[string]string)
	projectOwner := make(map[string]string)
	for _, name := range layout.CLIs() {
		st, ok := s.stores[name]
		if !ok {
			continue
		}
		for _, p := range st.Projects(req.Context(), history.ProjectOptions{ResolveCWD: true}) {
			for _, sum := range p.Sessions {
				sessionOwner[sum.ID] = name
			}
			if _, ok := projectOwner[p.Key]; !ok {
				projectOwner[p.Key] = name
			}
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if !a.LastActivity.Equal(b.LastActivity) {
			return a.LastActivity.After(b.LastActivity)
		}
		return a.Key < b.Key
	})

	r := *s.base
	r.SessionHref = func(id string) string {
		return "/" + sessionOwner[id] + "/session/" + url.PathEscape(id)
	}
	r.ProjectHref = func(key string) string {
		return "/" + projectOwner[key] + "/project/" + url.PathEscape(key)
	}
	s.writeIndex(w, &r, "lekha", projects)
}

func (s *server) handleProjects(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("cli")
	st, ok := s.stores[name]
	if !ok {
		http.NotFound(w, req)
		return
	}
	projects := st.Projects(req.Context(), history.ProjectOptions{ResolveCWD: true})
	s.writeIndex(w, s.linkedRenderer(name), name+" sessions", projects)
}

func (s *server) handleProject(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("cli")
	st, ok := s.stores[name]
	if !ok {
		http.NotFound(w, req)
		return
	}
	key := req.PathValue("key")
	sessions := st.Sessions(req.Context(), key)
	if len(sessions) == 0 {
		http.NotFound(w, req)
		return
	}
	p := core.Project{
		Key:          key,
		SessionCount: len(sessions),
		LastActivity: sessions[0].LastAt,
		Sessions:     sessions,
	}
	s.writeIndex(w, s.linkedRenderer(name), key, []core.Project{p})
}

func (s *server) handleSession(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("cli")
	st, ok := s.stores[name]
	if !ok {
		http.NotFound(w, req)
		return
	}
	id := req.PathValue("id")
	d, err := st.Detail(req.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			http.NotFound(w, req)
			return
		}
		slog.Error("load session", "session_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Details are cache-shared; redaction works on a private clone.
	if s.redactor != nil {
		d = d.Clone()
		if err := core.Chain(d, s.redactor); err != nil {
			slog.Error("redact session", "session_id", id, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.base.Render(w, d); err != nil {
		slog.Error("render session", "session_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// linkedRenderer copies the base renderer with link functions routed
// through one CLI's URL space.
func (s *server) linkedRenderer(cliName string) *htmlrender.Renderer {
	r := *s.base
	r.SessionHref = func(id string) string {
		return "/" + cliName + "/session/" + url.PathEscape(id)
	}
	r.ProjectHref = func(key string) string {
		return "/" + cliName + "/project/" + url.PathEscape(key)
	}
	return &r
}

func (s *server) writeIndex(w http.ResponseWriter, r *htmlrender.Renderer, title string, projects []core.Project) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.RenderIndex(w, title, projects); err != nil {
		slog.Error("render index", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		slog.Info("request", "method", req.Method, "path", req.URL.Path, "duration", time.Since(start))
	})
}
