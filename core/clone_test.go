package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	orig := &SessionDetail{
		ID:         "sess-1",
		ProjectKey: "/work/app",
		Title:      "original title",
		FirstAt:    ts,
		LastAt:     ts.Add(time.Minute),
		ToolCounts: map[string]int{"Bash": 2},
		DiffStats:  &DiffStats{Added: 10, Removed: 2, Changed: 1},
		Messages: []Message{
			{
				Role:      RoleUser,
				Timestamp: &ts,
				Content: []ContentBlock{
					{Type: BlockText, Text: "hello"},
				},
			},
			{
				Role: RoleAssistant,
				Content: []ContentBlock{
					{Type: BlockToolUse, Name: "Bash", Input: map[string]any{
						"command": "ls",
						"args":    []any{"-l", "-a"},
					}},
					{Type: BlockToolResult, Content: "output"},
				},
			},
		},
	}

	c := orig.Clone()
	require.NotSame(t, orig, c)
	assert.Equal(t, orig, c)

	c.Title = "changed"
	c.ToolCounts["Bash"] = 99
	c.DiffStats.Added = 0
	c.Messages[0].Content[0].Text = "changed"
	*c.Messages[0].Timestamp = ts.Add(time.Hour)
	c.Messages[1].Content[0].Input.(map[string]any)["command"] = "rm"
	c.Messages[1].Content[0].Input.(map[string]any)["args"].([]any)[0] = "-x"

	assert.Equal(t, "original title", orig.Title)
	assert.Equal(t, 2, orig.ToolCounts["Bash"])
	assert.Equal(t, 10, orig.DiffStats.Added)
	assert.Equal(t, "hello", orig.Messages[0].Content[0].Text)
	assert.Equal(t, ts, *orig.Messages[0].Timestamp)
	input := orig.Messages[1].Content[0].Input.(map[string]any)
	assert.Equal(t, "ls", input["command"])
	assert.Equal(t, "-l", input["args"].([]any)[0])
}

func TestCloneNil(t *testing.T) {
	var d *SessionDetail
	assert.Nil(t, d.Clone())
}

func TestCloneEmpty(t *testing.T) {
	orig := &SessionDetail{ID: "bare"}
	c := orig.Clone()
	require.NotNil(t, c)
	assert.Equal(t, "bare", c.ID)
	assert.Empty(t, c.Messages)
	assert.Nil(t, c.ToolCounts)
	assert.Nil(t, c.DiffStats)
}
