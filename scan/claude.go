package scan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sonnes/lekha/core"
)

// Raw deserialization types mirroring the ProjectsDir (claude) JSONL shape.

type claudeEntry struct {
	Type        string        `json:"type"`
	UUID        string        `json:"uuid"`
	SessionID   string        `json:"sessionId"`
	Timestamp   string        `json:"timestamp"`
	CWD         string        `json:"cwd"`
	IsSidechain bool          `json:"isSidechain"`
	Message     claudeMessage `json:"message"`
}

type claudeMessage struct {
	ID      string          `json:"id"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type claudeBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Thinking  string `json:"thinking"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Input     any    `json:"input"`
	ToolUseID string `json:"tool_use_id"`
	Content   any    `json:"content"`
	IsError   bool   `json:"is_error"`
}

// contentBlocks decodes message content, which is either a plain string or
// an array of typed blocks.
func (m claudeMessage) contentBlocks() []claudeBlock {
	if len(m.Content) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		if s == "" {
			return nil
		}
		return []claudeBlock{{Type: "text", Text: s}}
	}
	var blocks []claudeBlock
	if err := json.Unmarshal(m.Content, &blocks); err != nil {
		return nil
	}
	return blocks
}

// toolResultOnly reports whether every block is a tool_result. Such user
// records are the assistant's agentic loop, not a human turn.
func toolResultOnly(blocks []claudeBlock) bool {
	if len(blocks) == 0 {
		return false
	}
	for _, b := range blocks {
		if b.Type != "tool_result" {
			return false
		}
	}
	return true
}

// mapClaudeBlocks converts raw blocks to core content blocks, dropping
// kinds the model does not know.
func mapClaudeBlocks(blocks []claudeBlock) []core.ContentBlock {
	var out []core.ContentBlock
	for _, b := range blocks {
		switch b.Type {
		case "text":
			out = append(out, core.ContentBlock{Type: core.BlockText, Text: b.Text})
		case "thinking":
			out = append(out, core.ContentBlock{Type: core.BlockThinking, Text: b.Thinking})
		case "tool_use":
			out = append(out, core.ContentBlock{
				Type:      core.BlockToolUse,
				ToolUseID: b.ID,
				Name:      b.Name,
				Input:     b.Input,
			})
		case "tool_result":
			out = append(out, core.ContentBlock{
				Type:      core.BlockToolResult,
				ToolUseID: b.ToolUseID,
				Content:   extractToolResultContent(b.Content),
				IsError:   b.IsError,
			})
		}
	}
	return out
}

// extractToolResultContent handles tool_result content, which can be a
// string or an array of {"type":"text","text":"..."} objects.
func extractToolResultContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			if m, ok := item.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

// claudeSummaryStep folds one decoded record into the summary counters.
func claudeSummaryStep(line []byte, s *summaryState) {
	var e claudeEntry
	if err := json.Unmarshal(line, &e); err != nil {
		s.malformed++
		return
	}
	s.observeTimestamp(e.Timestamp)
	if s.cwd == "" && e.CWD != "" {
		s.cwd = e.CWD
	}
	if e.Type != "user" && e.Type != "assistant" {
		return
	}
	s.msgCount++
	if e.Type == "user" && !toolResultOnly(e.Message.contentBlocks()) {
		s.realTurns++
	}
}

// groupClaudeMessages merges streaming assistant chunks into single messages
// and maps all entries to core.Message values.
//
// Assistant messages arrive as multiple JSONL lines sharing the same
// message.id, each carrying one content block. Tool-result user entries can
// be interleaved between chunks of the same assistant message; they are
// appended without flushing the open assistant group.
func groupClaudeMessages(entries []claudeEntry) []core.Message {
	var messages []core.Message
	var current *core.Message
	var currentMsgID string

	emit := func() {
		if current != nil {
			messages = append(messages, *current)
			current = nil
			currentMsgID = ""
		}
	}

	for _, e := range entries {
		if e.Type == "assistant" {
			blocks := mapClaudeBlocks(e.Message.contentBlocks())
			if e.Message.ID != "" && e.Message.ID == currentMsgID && current != nil {
				current.Content = append(current.Content, blocks...)
				continue
			}
			emit()
			currentMsgID = e.Message.ID
			m := core.Message{UUID: e.UUID, Role: core.RoleAssistant, Content: blocks}
			if ts := parseTime(e.Timestamp); !ts.IsZero() {
				m.Timestamp = &ts
			}
			current = &m
			continue
		}

		blocks := e.Message.contentBlocks()
		if !toolResultOnly(blocks) {
			// Real human turn: flush the pending assistant group.
			emit()
		}
		m := core.Message{UUID: e.UUID, Role: core.RoleUser, Content: mapClaudeBlocks(blocks)}
		if ts := parseTime(e.Timestamp); !ts.IsZero() {
			m.Timestamp = &ts
		}
		messages = append(messages, m)
	}
	emit()
	return messages
}

// parseClaude decodes every line of a ProjectsDir session into a detail.
// Malformed lines are counted and skipped, never fatal.
func parseClaude(r io.Reader) (*core.SessionDetail, error) {
	d := &core.SessionDetail{}
	var entries []claudeEntry
	var first, last time.Time

	scanner := newLineScanner(r)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || bytes.Contains(line, interruptMarker) {
			continue
		}
		var e claudeEntry
		if err := json.Unmarshal(line, &e); err != nil {
			d.MalformedLines++
			continue
		}
		if ts := parseTime(e.Timestamp); !ts.IsZero() {
			if first.IsZero() {
				first = ts
			}
			last = ts
		}
		if d.CWD == "" && e.CWD != "" {
			d.CWD = e.CWD
		}
		if e.IsSidechain {
			continue
		}
		if e.Type != "user" && e.Type != "assistant" {
			continue
		}
		entries = append(entries, e)
	}

	d.Messages = groupClaudeMessages(entries)
	d.RealTurns = core.RealTurnCount(d.Messages)
	d.FirstAt = first
	d.LastAt = last
	return d, scanner.Err()
}
