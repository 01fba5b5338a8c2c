// Package core defines the logical history model that scanners produce and
// renderers consume: projects grouped by working directory, per-session
// summaries, and fully parsed session detail.
package core

import "time"

// UnknownProject keys sessions whose working directory could not be
// recovered. It is a project key in its own right and is never matched
// against any other key.
const UnknownProject = "(unknown)"

// Project groups the sessions that share a working directory. Key is the
// canonical working-directory string once resolved; until then it holds the
// provisional directory name the session files live under.
type Project struct {
	Key          string           `json:"key"`
	CWD          string           `json:"cwd,omitempty"` // resolved working directory, empty until known
	SessionCount int              `json:"session_count"`
	LastActivity time.Time        `json:"last_activity"`
	Sessions     []SessionSummary `json:"sessions,omitempty"`
}

// SessionSummary identifies one session file without its message bodies.
// Counts are cheap estimates until a full parse refines them. A re-scan of
// the same file supersedes the previous summary, it never appends.
type SessionSummary struct {
	ID           string    `json:"id"`
	ProjectKey   string    `json:"project_key,omitempty"`
	Path         string    `json:"path"`
	FirstAt      time.Time `json:"first_at"`
	LastAt       time.Time `json:"last_at"`
	MessageCount int       `json:"message_count"`
	RealTurns    int       `json:"real_turns"`
	Size         int64     `json:"size"`
}

// SessionDetail is the fully parsed form of one session: the complete
// ordered message sequence plus derived statistics. Expensive to produce,
// so callers go through the session cache and must treat the value as
// read-only.
type SessionDetail struct {
	ID             string         `json:"id"`
	ProjectKey     string         `json:"project_key,omitempty"`
	Path           string         `json:"path"`
	CWD            string         `json:"cwd,omitempty"`
	Title          string         `json:"title,omitempty"`
	FirstAt        time.Time      `json:"first_at"`
	LastAt         time.Time      `json:"last_at"`
	Messages       []Message      `json:"messages"`
	RealTurns      int            `json:"real_turns"`
	ToolCounts     map[string]int `json:"tool_counts,omitempty"`
	DiffStats      *DiffStats     `json:"diff_stats,omitempty"`
	MalformedLines int            `json:"malformed_lines,omitempty"`
}

// Summary returns the session's summary row with counts refined by the
// full parse.
func (d *SessionDetail) Summary() SessionSummary {
	return SessionSummary{
		ID:           d.ID,
		ProjectKey:   d.ProjectKey,
		Path:         d.Path,
		FirstAt:      d.FirstAt,
		LastAt:       d.LastAt,
		MessageCount: len(d.Messages),
		RealTurns:    d.RealTurns,
	}
}

// DiffStats summarizes file-level edit statistics across a session.
type DiffStats struct {
	Added   int `json:"added,omitempty"`   // lines added (Write content + Edit new_string)
	Removed int `json:"removed,omitempty"` // lines removed (Edit old_string)
	Changed int `json:"changed,omitempty"` // unique files touched
}

// Message is a single record in the conversation.
type Message struct {
	UUID      string         `json:"uuid,omitempty"`
	Role      Role           `json:"role"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Content   []ContentBlock `json:"content"`
}

// Role enumerates who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ContentBlock is one piece of a message. The Type field determines which
// other fields are populated.
type ContentBlock struct {
	Type      BlockType `json:"type"`
	Text      string    `json:"text,omitempty"`        // set for "text" and "thinking"
	ToolUseID string    `json:"tool_use_id,omitempty"` // set for "tool_use" and "tool_result"
	Name      string    `json:"name,omitempty"`        // tool name, set for "tool_use"
	Input     any       `json:"input,omitempty"`       // tool input params, set for "tool_use"
	Content   string    `json:"content,omitempty"`     // tool output, set for "tool_result"
	IsError   bool      `json:"is_error,omitempty"`    // set for "tool_result"
}

// BlockType enumerates content block kinds.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockThinking   BlockType = "thinking"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)
