// Package html renders sessions as standalone HTML pages styled with
// Tailwind CSS v4 (CDN) and syntax highlighting via goldmark + chroma.
package html

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sonnes/lekha/core"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
)

// Renderer renders sessions and index listings to standalone HTML pages.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template

	// SessionHref, when non-nil, overrides the default {id}.html link
	// pattern in index pages. Used by the serve command to generate
	// server-routed URLs instead of static file links.
	SessionHref func(sessionID string) string

	// ProjectHref, when non-nil, turns project headings in index pages
	// into links. Static exports leave it nil.
	ProjectHref func(projectKey string) string
}

// New creates an HTML Renderer with goldmark configured for GFM and syntax highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // allow raw HTML in markdown
		),
	)

	tmpl := template.Must(
		template.New("page.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{md: md, tmpl: tmpl}
}

// pageData is the top-level template data passed to page.html.
type pageData struct {
	Session         *core.SessionDetail
	Title           string
	Messages        []messageData
	OverallDuration string
	ToolStats       []toolStat
}

// messageData is the per-message template data.
type messageData struct {
	ID          string // anchor ID for timeline links (e.g. "msg-0")
	Message     core.Message
	RoleLabel   string
	BorderClass string
	BadgeClass  string
	DotClass    string // timeline dot color class
	Timestamp   *time.Time
	Duration    string   // time since previous message (e.g. "4s")
	Summary     string   // short text description for timeline sidebar
	Tools       []string // tool names used in this message
	Blocks      []template.HTML
}

type toolStat struct {
	Name  string
	Count int
}

// indexData is the template data passed to index.html.
type indexData struct {
	Title    string
	Projects []projectData
}

type projectData struct {
	Project  core.Project
	Href     string
	Sessions []sessionRow
}

type sessionRow struct {
	Summary core.SessionSummary
	Title   string
	Href    string
}

// RenderIndex writes an HTML index page listing the given projects and their
// sessions to w. Projects arrive already ordered; the listing preserves it.
func (r *Renderer) RenderIndex(w io.Writer, title string, projects []core.Project) error {
	data := indexData{Title: title}
	for _, p := range projects {
		pd := projectData{Project: p}
		if r.ProjectHref != nil {
			pd.Href = r.ProjectHref(p.Key)
		}
		for _, s := range p.Sessions {
			pd.Sessions = append(pd.Sessions, sessionRow{
				Summary: s,
				Title:   s.ID,
				Href:    r.sessionHref(s.ID),
			})
		}
		data.Projects = append(data.Projects, pd)
	}
	return r.tmpl.ExecuteTemplate(w, "index.html", data)
}

func (r *Renderer) sessionHref(sessionID string) string {
	if r.SessionHref != nil {
		return r.SessionHref(sessionID)
	}
	return sessionID + ".html"
}

// Render writes the session as a complete HTML page to w.
func (r *Renderer) Render(w io.Writer, d *core.SessionDetail) error {
	// Build tool_result index: tool_use_id → tool_result block.
	resultIndex := make(map[string]core.ContentBlock)
	for _, msg := range d.Messages {
		for _, b := range msg.Content {
			if b.Type == core.BlockToolResult && b.ToolUseID != "" {
				resultIndex[b.ToolUseID] = b
			}
		}
	}

	consumed := make(map[string]bool)

	var prevTimestamp *time.Time
	var messages []messageData
	for i, msg := range d.Messages {
		md := messageData{
			ID:          fmt.Sprintf("msg-%d", i),
			Message:     msg,
			RoleLabel:   roleLabel(msg.Role),
			BorderClass: borderClass(msg.Role),
			BadgeClass:  badgeClass(msg.Role),
			DotClass:    dotClass(msg.Role),
			Timestamp:   msg.Timestamp,
		}
		if msg.Timestamp != nil && prevTimestamp != nil {
			md.Duration = formatDuration(msg.Timestamp.Sub(*prevTimestamp))
		}
		if msg.Timestamp != nil {
			prevTimestamp = msg.Timestamp
		}
		md.Summary, md.Tools = messageSummary(msg)

		hasContent := false
		for _, b := range msg.Content {
			switch b.Type {
			case core.BlockToolUse:
				var result *core.ContentBlock
				if tr, ok := resultIndex[b.ToolUseID]; ok {
					result = &tr
					consumed[b.ToolUseID] = true
				}
				rendered, err := r.renderToolUseBlock(b, result)
				if err != nil {
					return fmt.Errorf("render tool_use block: %w", err)
				}
				md.Blocks = append(md.Blocks, rendered)
				hasContent = true

			case core.BlockToolResult:
				if consumed[b.ToolUseID] {
					continue
				}
				md.Blocks = append(md.Blocks, renderToolResultBlock(b))
				hasContent = true

			case core.BlockThinking:
				md.Blocks = append(md.Blocks, renderThinkingBlock(b))
				hasContent = true

			default:
				rendered, err := r.renderTextBlock(msg.Role, b)
				if err != nil {
					return fmt.Errorf("render text block: %w", err)
				}
				md.Blocks = append(md.Blocks, rendered)
				hasContent = true
			}
		}

		if hasContent {
			messages = append(messages, md)
		}
	}

	title := d.Title
	if title == "" {
		title = "Session " + d.ID
	}

	var overallDuration string
	if !d.FirstAt.IsZero() && !d.LastAt.IsZero() {
		overallDuration = formatDuration(d.LastAt.Sub(d.FirstAt))
	}

	data := pageData{
		Session:         d,
		Title:           title,
		Messages:        messages,
		OverallDuration: overallDuration,
		ToolStats:       toolStats(d.ToolCounts),
	}
	return r.tmpl.ExecuteTemplate(w, "page.html", data)
}

// toolStats flattens the tool counter map into a deterministic slice,
// most-used tools first.
func toolStats(counts map[string]int) []toolStat {
	if len(counts) == 0 {
		return nil
	}
	stats := make([]toolStat, 0, len(counts))
	for name, n := range counts {
		stats = append(stats, toolStat{Name: name, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

func roleLabel(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "User"
	case core.RoleAssistant:
		return "Assistant"
	case core.RoleSystem:
		return "System"
	default:
		return string(role)
	}
}

func borderClass(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "border-l-4 border-l-blue-500"
	case core.RoleAssistant:
		return "border-l-4 border-l-emerald-500"
	case core.RoleSystem:
		return "border-l-4 border-l-slate-400"
	default:
		return ""
	}
}

func badgeClass(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "text-blue-700 dark:text-blue-400 bg-blue-50 dark:bg-blue-950"
	case core.RoleAssistant:
		return "text-emerald-700 dark:text-emerald-400 bg-emerald-50 dark:bg-emerald-950"
	case core.RoleSystem:
		return "text-slate-600 dark:text-slate-400 bg-slate-100 dark:bg-slate-800"
	default:
		return ""
	}
}

func dotClass(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "bg-blue-500"
	case core.RoleAssistant:
		return "bg-emerald-500"
	case core.RoleSystem:
		return "bg-slate-400"
	default:
		return "bg-slate-300"
	}
}

// messageSummary returns a short text summary and list of tool names for the timeline.
func messageSummary(msg core.Message) (string, []string) {
	var summary string
	var tools []string
	for _, b := range msg.Content {
		switch b.Type {
		case core.BlockText:
			if summary == "" {
				text := b.Text
				if msg.Role == core.RoleUser {
					text = core.CleanUserText(text)
				}
				text = firstLine(text)
				if text == "" {
					continue
				}
				if len(text) > 50 {
					text = text[:47] + "..."
				}
				summary = text
			}
		case core.BlockToolUse:
			tools = append(tools, b.Name)
		}
	}
	if summary == "" && len(tools) > 0 {
		summary = strings.Join(tools, ", ")
	}
	return summary, tools
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
