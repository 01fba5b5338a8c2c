package scan

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/layout"
)

func parseCodexFile(t *testing.T, name string) *core.SessionDetail {
	t.Helper()
	f, err := os.Open(testdataPath(name))
	require.NoError(t, err)
	defer f.Close()

	d, err := parseCodex(f)
	require.NoError(t, err)
	return d
}

func TestParseCodex(t *testing.T) {
	d := parseCodexFile(t, "codex_simple.jsonl")

	assert.Equal(t, "/work/zeta", d.CWD)
	assert.Equal(t, 1, d.RealTurns)
	assert.Equal(t, "2025-07-03T08:00:00Z", d.FirstAt.UTC().Format(time.RFC3339))
	assert.Equal(t, "2025-07-03T08:00:32Z", d.LastAt.UTC().Format(time.RFC3339))

	// Conversation bodies come from response_item records only; the
	// event_msg mirror of each turn must not duplicate them.
	require.Len(t, d.Messages, 2)
	assert.Equal(t, core.RoleUser, d.Messages[0].Role)
	assert.Equal(t, "add retry logic to the fetcher", d.Messages[0].Content[0].Text)
	assert.Equal(t, core.RoleAssistant, d.Messages[1].Role)
}

func TestParseCodexNoMeta(t *testing.T) {
	d := parseCodexFile(t, "codex_no_meta.jsonl")

	assert.Empty(t, d.CWD)
	assert.Equal(t, 1, d.RealTurns)
	assert.Len(t, d.Messages, 2)
}

func TestCodexEntryMessage(t *testing.T) {
	tests := []struct {
		name   string
		entry  codexEntry
		wantOK bool
		checks func(t *testing.T, m core.Message)
	}{
		{
			name: "user message",
			entry: codexEntry{
				Timestamp: "2025-07-01T10:00:00Z",
				Type:      "response_item",
				Payload: codexPayload{
					Type:    "message",
					Role:    "user",
					Content: []codexContent{{Type: "input_text", Text: "hi"}},
				},
			},
			wantOK: true,
			checks: func(t *testing.T, m core.Message) {
				assert.Equal(t, core.RoleUser, m.Role)
				require.NotNil(t, m.Timestamp)
				assert.Equal(t, "hi", m.Content[0].Text)
			},
		},
		{
			name: "function call is not a message",
			entry: codexEntry{
				Type:    "response_item",
				Payload: codexPayload{Type: "function_call"},
			},
			wantOK: false,
		},
		{
			name: "event record is not a message",
			entry: codexEntry{
				Type:    "event_msg",
				Payload: codexPayload{Type: "user_message", Message: "hi"},
			},
			wantOK: false,
		},
		{
			name: "empty content dropped",
			entry: codexEntry{
				Type:    "response_item",
				Payload: codexPayload{Type: "message", Role: "user"},
			},
			wantOK: false,
		},
		{
			name: "unknown role defaults to assistant",
			entry: codexEntry{
				Type: "response_item",
				Payload: codexPayload{
					Type:    "message",
					Role:    "developer",
					Content: []codexContent{{Type: "output_text", Text: "note"}},
				},
			},
			wantOK: true,
			checks: func(t *testing.T, m core.Message) {
				assert.Equal(t, core.RoleAssistant, m.Role)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.entry.message()
			require.Equal(t, tt.wantOK, ok)
			if tt.checks != nil {
				tt.checks(t, m)
			}
		})
	}
}

func TestParseCodexMalformedLines(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "*.jsonl")
	require.NoError(t, err)
	_, err = f.WriteString(`{"timestamp":"2025-07-05T09:00:00Z","type":"session_meta","payload":{"cwd":"/work/x"}}` + "\n" +
		"garbage\n" +
		`{"timestamp":"2025-07-05T09:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"go"}]}}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	d, err := Parse(f.Name(), layout.DateSharded)
	require.NoError(t, err)
	assert.Equal(t, 1, d.MalformedLines)
	assert.Equal(t, "/work/x", d.CWD)
	assert.Len(t, d.Messages, 1)
}
