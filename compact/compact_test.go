package compact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/scan"
)

// parseSession writes records as a JSONL file and runs it through the real
// parser, so transforms are tested against parser-shaped input.
func parseSession(t *testing.T, records []map[string]any) *core.SessionDetail {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := json.NewEncoder(f)
	for _, rec := range records {
		require.NoError(t, enc.Encode(rec))
	}
	require.NoError(t, f.Close())

	d, err := scan.Parse(path, layout.ProjectsDir)
	require.NoError(t, err)
	return d
}

func verboseRecords() []map[string]any {
	long := strings.Repeat("line\n", 50)
	return []map[string]any{
		{
			"type": "user", "uuid": "u1", "timestamp": "2025-06-01T10:00:00Z", "cwd": "/work/app",
			"message": map[string]any{"role": "user", "content": "Write the initial config loader"},
		},
		{
			"type": "assistant", "uuid": "a1", "timestamp": "2025-06-01T10:00:05Z",
			"message": map[string]any{
				"id": "msg_01", "role": "assistant",
				"content": []any{
					map[string]any{"type": "thinking", "thinking": "The loader needs defaults before reading the file."},
					map[string]any{"type": "tool_use", "id": "toolu_01", "name": "Write", "input": map[string]any{
						"file_path": "/work/app/config.go",
						"content":   long,
					}},
				},
			},
		},
		{
			"type": "user", "uuid": "u2", "timestamp": "2025-06-01T10:00:10Z",
			"message": map[string]any{"role": "user", "content": []any{
				map[string]any{"type": "tool_result", "tool_use_id": "toolu_01", "content": long},
			}},
		},
		{
			"type": "assistant", "uuid": "a2", "timestamp": "2025-06-01T10:00:15Z",
			"message": map[string]any{
				"id": "msg_02", "role": "assistant",
				"content": []any{
					map[string]any{"type": "tool_use", "id": "toolu_02", "name": "Bash", "input": map[string]any{
						"command": "go build ./...",
					}},
				},
			},
		},
		{
			"type": "user", "uuid": "u3", "timestamp": "2025-06-01T10:00:20Z",
			"message": map[string]any{"role": "user", "content": []any{
				map[string]any{"type": "tool_result", "tool_use_id": "toolu_02", "content": "config.go:10:2: undefined: defaults\n", "is_error": true},
			}},
		},
		{
			"type": "assistant", "uuid": "a3", "timestamp": "2025-06-01T10:00:25Z",
			"message": map[string]any{
				"id": "msg_03", "role": "assistant",
				"content": []any{map[string]any{"type": "text", "text": "Fixed the missing defaults helper."}},
			},
		},
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"single line no newline", "hello", 1},
		{"single line with newline", "hello\n", 1},
		{"multiple lines", "a\nb\nc", 3},
		{"multiple lines trailing newline", "a\nb\nc\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countLines(tt.input))
		})
	}
}

func TestLineSummary(t *testing.T) {
	tests := []struct {
		name  string
		label string
		input string
		want  string
	}{
		{"empty", "output", "", "[output: 0 lines]"},
		{"single line", "output", "hello", "[output: 1 line]"},
		{"multiple lines", "output", "a\nb\nc", "[output: 3 lines]"},
		{"error label", "error", "a\nb", "[error: 2 lines]"},
		{"field label", "content", "a\nb\nc\nd\n", "[content: 4 lines]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lineSummary(tt.label, tt.input))
		})
	}
}

func TestFilterThinking(t *testing.T) {
	blocks := []core.ContentBlock{
		{Type: core.BlockThinking, Text: "reasoning"},
		{Type: core.BlockText, Text: "visible"},
		{Type: core.BlockToolUse, Name: "Bash"},
	}

	filtered := filterThinking(blocks)
	require.Len(t, filtered, 2)
	assert.Equal(t, core.BlockText, filtered[0].Type)
	assert.Equal(t, core.BlockToolUse, filtered[1].Type)
}

func TestFilterThinkingNoop(t *testing.T) {
	blocks := []core.ContentBlock{
		{Type: core.BlockText, Text: "hello"},
	}
	filtered := filterThinking(blocks)
	require.Len(t, filtered, 1)
	assert.Equal(t, "hello", filtered[0].Text)
}

func TestCompactToolResult(t *testing.T) {
	longContent := strings.Repeat("line\n", 50)

	tests := []struct {
		name    string
		content string
		isError bool
		want    string
	}{
		{"success output", longContent, false, "[output: 50 lines]"},
		{"error output", longContent, true, "[error: 50 lines]"},
		{"short output", "ok\n", false, "[output: 1 line]"},
		{"empty output", "", false, "[output: 0 lines]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &core.SessionDetail{
				ID:      "test",
				FirstAt: time.Now(),
				Messages: []core.Message{{
					Role: core.RoleUser,
					Content: []core.ContentBlock{
						{Type: core.BlockToolResult, Content: tt.content, IsError: tt.isError},
					},
				}},
			}

			c := New(Config{})
			require.NoError(t, c.Transform(d))
			assert.Equal(t, tt.want, d.Messages[0].Content[0].Content)
		})
	}
}

func TestCompactToolUseInputs(t *testing.T) {
	longContent := strings.Repeat("line\n", 50)

	tests := []struct {
		name       string
		toolName   string
		input      map[string]any
		wantFields map[string]string // field -> expected value
		keepFields []string          // fields that must NOT contain summary markers
	}{
		{
			name:       "write content summarized",
			toolName:   "Write",
			input:      map[string]any{"file_path": "/tmp/f.go", "content": longContent},
			wantFields: map[string]string{"content": "[content: 50 lines]"},
			keepFields: []string{"file_path"},
		},
		{
			name:     "edit old_string and new_string summarized",
			toolName: "Edit",
			input:    map[string]any{"file_path": "/tmp/f.go", "old_string": longContent, "new_string": longContent},
			wantFields: map[string]string{
				"old_string": "[old_string: 50 lines]",
				"new_string": "[new_string: 50 lines]",
			},
			keepFields: []string{"file_path"},
		},
		{
			name:       "bash command unchanged",
			toolName:   "Bash",
			input:      map[string]any{"command": "ls -la"},
			keepFields: []string{"command"},
		},
		{
			name:       "read file_path unchanged",
			toolName:   "Read",
			input:      map[string]any{"file_path": "/tmp/f.go"},
			keepFields: []string{"file_path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &core.SessionDetail{
				ID:      "test",
				FirstAt: time.Now(),
				Messages: []core.Message{{
					Role: core.RoleAssistant,
					Content: []core.ContentBlock{
						{Type: core.BlockToolUse, Name: tt.toolName, Input: tt.input},
					},
				}},
			}

			c := New(Config{})
			require.NoError(t, c.Transform(d))

			m := d.Messages[0].Content[0].Input.(map[string]any)
			for field, want := range tt.wantFields {
				assert.Equal(t, want, m[field], "field %q", field)
			}
			for _, field := range tt.keepFields {
				s := m[field].(string)
				assert.NotContains(t, s, "[", "field %q should not be summarized", field)
			}
		})
	}
}

func TestCompactMultiEditInputs(t *testing.T) {
	longContent := strings.Repeat("line\n", 50)
	input := map[string]any{
		"file_path": "/tmp/f.go",
		"edits": []any{
			map[string]any{"old_string": longContent, "new_string": "short"},
			map[string]any{"old_string": "short", "new_string": longContent},
		},
	}

	d := &core.SessionDetail{
		ID:      "test",
		FirstAt: time.Now(),
		Messages: []core.Message{{
			Role: core.RoleAssistant,
			Content: []core.ContentBlock{
				{Type: core.BlockToolUse, Name: "MultiEdit", Input: input},
			},
		}},
	}

	c := New(Config{})
	require.NoError(t, c.Transform(d))

	edits := d.Messages[0].Content[0].Input.(map[string]any)["edits"].([]any)
	first := edits[0].(map[string]any)
	second := edits[1].(map[string]any)
	assert.Equal(t, "[old_string: 50 lines]", first["old_string"])
	assert.Equal(t, "[new_string: 1 line]", first["new_string"])
	assert.Equal(t, "[old_string: 1 line]", second["old_string"])
	assert.Equal(t, "[new_string: 50 lines]", second["new_string"])
}

func TestCompactKeepThinkingByDefault(t *testing.T) {
	d := &core.SessionDetail{
		ID:      "test",
		FirstAt: time.Now(),
		Messages: []core.Message{{
			Role: core.RoleAssistant,
			Content: []core.ContentBlock{
				{Type: core.BlockThinking, Text: "deep thoughts"},
				{Type: core.BlockText, Text: "response"},
			},
		}},
	}

	c := New(Config{})
	require.NoError(t, c.Transform(d))
	require.Len(t, d.Messages[0].Content, 2)
	assert.Equal(t, core.BlockThinking, d.Messages[0].Content[0].Type)
}

func TestCompactStripThinking(t *testing.T) {
	d := &core.SessionDetail{
		ID:      "test",
		FirstAt: time.Now(),
		Messages: []core.Message{{
			Role: core.RoleAssistant,
			Content: []core.ContentBlock{
				{Type: core.BlockThinking, Text: "deep thoughts"},
				{Type: core.BlockText, Text: "response"},
			},
		}},
	}

	c := New(Config{StripThinking: true})
	require.NoError(t, c.Transform(d))
	require.Len(t, d.Messages[0].Content, 1)
	assert.Equal(t, core.BlockText, d.Messages[0].Content[0].Type)
}

func TestCompactParsedSession(t *testing.T) {
	d := parseSession(t, verboseRecords())

	c := New(Config{})
	require.NoError(t, c.Transform(d))

	// Thinking block should still be present (default: keep)
	var hasThinking bool
	for _, msg := range d.Messages {
		for _, b := range msg.Content {
			if b.Type == core.BlockThinking {
				hasThinking = true
			}
			if b.Type == core.BlockToolResult && !b.IsError {
				assert.Contains(t, b.Content, "[output:")
			}
		}
	}
	assert.True(t, hasThinking, "thinking blocks should be preserved by default")

	// Write tool content field should be summarized
	for _, msg := range d.Messages {
		for _, b := range msg.Content {
			if b.Type == core.BlockToolUse && strings.EqualFold(b.Name, "Write") {
				m := b.Input.(map[string]any)
				assert.Contains(t, m["content"], "[content:")
			}
		}
	}
}

func TestCompactParsedSessionStripThinking(t *testing.T) {
	d := parseSession(t, verboseRecords())

	c := New(Config{StripThinking: true})
	require.NoError(t, c.Transform(d))

	for _, msg := range d.Messages {
		for _, b := range msg.Content {
			assert.NotEqual(t, core.BlockThinking, b.Type)
		}
	}
}

func TestCompactParsedSessionErrors(t *testing.T) {
	d := parseSession(t, verboseRecords())

	c := New(Config{})
	require.NoError(t, c.Transform(d))

	var sawError bool
	for _, msg := range d.Messages {
		for _, b := range msg.Content {
			if b.Type == core.BlockToolResult && b.IsError {
				sawError = true
				assert.Contains(t, b.Content, "[error:")
			}
		}
	}
	assert.True(t, sawError, "fixture should contain an error tool_result")
}
