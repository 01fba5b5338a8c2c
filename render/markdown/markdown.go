// Package markdown renders sessions as portable Markdown documents.
package markdown

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sonnes/lekha/core"
)

// Renderer renders a session to Markdown.
type Renderer struct {
	// IncludeThinking emits thinking blocks as quoted asides. Off by
	// default; most exports want the visible conversation only.
	IncludeThinking bool
}

// New creates a Markdown Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the session as a Markdown document to w. Tool results are
// paired with their tool_use by id and folded into the same section.
func (r *Renderer) Render(w io.Writer, d *core.SessionDetail) error {
	var b strings.Builder

	writeFrontMatter(&b, d)

	resultIndex := make(map[string]core.ContentBlock)
	for _, msg := range d.Messages {
		for _, blk := range msg.Content {
			if blk.Type == core.BlockToolResult && blk.ToolUseID != "" {
				resultIndex[blk.ToolUseID] = blk
			}
		}
	}

	consumed := make(map[string]bool)
	for _, msg := range d.Messages {
		section := r.messageSection(msg, resultIndex, consumed)
		if section == "" {
			continue
		}
		b.WriteString("### ")
		b.WriteString(roleHeading(msg.Role))
		if msg.Timestamp != nil {
			b.WriteString(" — ")
			b.WriteString(msg.Timestamp.Format("Jan 2, 2006 3:04:05 PM"))
		}
		b.WriteString("\n\n")
		b.WriteString(section)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFrontMatter(b *strings.Builder, d *core.SessionDetail) {
	title := d.Title
	if title == "" {
		title = "Session " + d.ID
	}
	fmt.Fprintf(b, "# %s\n\n", title)

	if d.ProjectKey != "" {
		fmt.Fprintf(b, "Project: `%s`  \n", d.ProjectKey)
	}
	fmt.Fprintf(b, "Session: `%s`  \n", d.ID)
	if !d.FirstAt.IsZero() {
		fmt.Fprintf(b, "Started: %s  \n", d.FirstAt.Format("Jan 2, 2006 3:04 PM"))
	}
	if !d.FirstAt.IsZero() && !d.LastAt.IsZero() {
		fmt.Fprintf(b, "Duration: %s  \n", formatDuration(d.LastAt.Sub(d.FirstAt)))
	}
	fmt.Fprintf(b, "Messages: %d (%d turns)  \n", len(d.Messages), d.RealTurns)
	if s := d.DiffStats; s != nil {
		fmt.Fprintf(b, "Changes: +%d -%d across %d files  \n", s.Added, s.Removed, s.Changed)
	}
	b.WriteString("\n---\n\n")
}

// messageSection renders one message's blocks. An empty result means the
// message had nothing left to show, for example a tool result already folded
// into its tool_use.
func (r *Renderer) messageSection(msg core.Message, resultIndex map[string]core.ContentBlock, consumed map[string]bool) string {
	var b strings.Builder

	for _, blk := range msg.Content {
		switch blk.Type {
		case core.BlockText:
			text := blk.Text
			if msg.Role == core.RoleUser {
				text = core.CleanUserText(text)
			}
			text = strings.TrimSpace(text)
			if text != "" {
				b.WriteString(text)
				b.WriteString("\n\n")
			}

		case core.BlockThinking:
			if !r.IncludeThinking {
				continue
			}
			text := strings.TrimSpace(blk.Text)
			if text == "" {
				continue
			}
			b.WriteString("> *Thinking*\n")
			for _, line := range strings.Split(text, "\n") {
				b.WriteString("> ")
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("\n")

		case core.BlockToolUse:
			var result *core.ContentBlock
			if res, ok := resultIndex[blk.ToolUseID]; ok {
				result = &res
				consumed[blk.ToolUseID] = true
			}
			writeToolUse(&b, blk, result)

		case core.BlockToolResult:
			if consumed[blk.ToolUseID] {
				continue
			}
			writeFence(&b, blk.Content, blk.IsError)
		}
	}

	return b.String()
}

func writeToolUse(b *strings.Builder, blk core.ContentBlock, result *core.ContentBlock) {
	name := blk.Name
	if name == "" {
		name = "tool"
	}
	fmt.Fprintf(b, "**Tool: %s**\n\n", name)

	if input := formatToolInput(blk.Input); input != "" {
		b.WriteString("```json\n")
		b.WriteString(input)
		b.WriteString("\n```\n\n")
	}
	if result != nil && strings.TrimSpace(result.Content) != "" {
		writeFence(b, result.Content, result.IsError)
	}
}

func writeFence(b *strings.Builder, content string, isError bool) {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return
	}
	if isError {
		b.WriteString("Error:\n\n")
	}
	b.WriteString("```\n")
	b.WriteString(content)
	b.WriteString("\n```\n\n")
}

func formatToolInput(input any) string {
	if input == nil {
		return ""
	}
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", input)
	}
	return string(data)
}

func roleHeading(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "User"
	case core.RoleAssistant:
		return "Assistant"
	case core.RoleSystem:
		return "System"
	default:
		return strings.ToUpper(string(role))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
