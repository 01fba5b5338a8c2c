package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func userText(text string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentBlock{{Type: BlockText, Text: text}},
	}
}

func assistantText(text string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: []ContentBlock{{Type: BlockText, Text: text}},
	}
}

func toolResultMsg(id string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentBlock{{Type: BlockToolResult, ToolUseID: id, Content: "ok"}},
	}
}

func TestRealTurnCount(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     int
	}{
		{"empty", nil, 0},
		{
			"plain user turns",
			[]Message{userText("a"), assistantText("b"), userText("c")},
			2,
		},
		{
			"tool results excluded",
			[]Message{
				userText("go"),
				toolResultMsg("t1"),
				toolResultMsg("t2"),
			},
			1,
		},
		{
			"assistant only",
			[]Message{assistantText("hi")},
			0,
		},
		{
			"empty content still counts",
			[]Message{{Role: RoleUser}},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RealTurnCount(tt.messages))
		})
	}
}

func TestIsToolResultOnly(t *testing.T) {
	assert.True(t, IsToolResultOnly(toolResultMsg("t1")))
	assert.False(t, IsToolResultOnly(userText("hi")))
	assert.False(t, IsToolResultOnly(Message{Role: RoleUser}))

	mixed := Message{Role: RoleUser, Content: []ContentBlock{
		{Type: BlockToolResult, ToolUseID: "t1"},
		{Type: BlockText, Text: "and also"},
	}}
	assert.False(t, IsToolResultOnly(mixed))
}
