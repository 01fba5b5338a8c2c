package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanUserText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "fix the bug", "fix the bug"},
		{
			"slash command",
			"<command-name>/commit</command-name><command-args></command-args>",
			"/commit",
		},
		{
			"slash command with args",
			"<command-name>/review</command-name><command-args>src/main.go</command-args>",
			"/review src/main.go",
		},
		{
			"system reminder stripped",
			"<system-reminder>be brief</system-reminder>do the thing",
			"do the thing",
		},
		{
			"unclosed tag dropped",
			"<local-command-stdout>leftover",
			"leftover",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanUserText(tt.in))
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     string
	}{
		{"no messages", nil, ""},
		{
			"first user text",
			[]Message{userText("add a retry flag"), assistantText("sure")},
			"add a retry flag",
		},
		{
			"assistant first is skipped",
			[]Message{assistantText("welcome back"), userText("hello")},
			"hello",
		},
		{
			"slash command cleaned",
			[]Message{userText("<command-name>/compact</command-name>")},
			"/compact",
		},
		{
			"long prompt truncated on word boundary",
			[]Message{userText(strings.Repeat("word ", 30))},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.messages)
			if tt.name == "long prompt truncated on word boundary" {
				assert.LessOrEqual(t, len(got), 83)
				assert.True(t, strings.HasSuffix(got, "..."))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
