// Generates an example HTML session page and writes it to stdout.
// Usage: go run ./render/html/cmd/example > example.html
package main

import (
	"os"
	"time"

	"github.com/sonnes/lekha/core"
	htmlrender "github.com/sonnes/lekha/render/html"
)

func main() {
	start := time.Date(2026, 2, 13, 10, 15, 0, 0, time.UTC)
	t1 := start.Add(4 * time.Second)
	t2 := start.Add(21 * time.Second)
	t3 := start.Add(26 * time.Second)
	t4 := start.Add(48 * time.Second)
	t5 := start.Add(65 * time.Second)
	end := start.Add(2 * time.Minute)

	d := &core.SessionDetail{
		ID:         "8397fc7c-39b9-4e25-81da-ed47a574a88a",
		ProjectKey: "/home/user/code/lekha",
		Path:       "/home/user/.claude/projects/-home-user-code-lekha/8397fc7c.jsonl",
		Title:      "Make the walker skip unreadable directories",
		FirstAt:    start,
		LastAt:     end,
		RealTurns:  2,
		ToolCounts: map[string]int{"Read": 2, "Edit": 1, "Bash": 1},
		DiffStats:  &core.DiffStats{Added: 18, Removed: 4, Changed: 1},
		Messages: []core.Message{
			{
				Role:      core.RoleUser,
				Timestamp: &start,
				Content: []core.ContentBlock{
					{Type: core.BlockText, Text: "Make the walker skip unreadable directories instead of aborting the whole scan."},
				},
			},
			{
				Role:      core.RoleAssistant,
				Timestamp: &t1,
				Content: []core.ContentBlock{
					{Type: core.BlockThinking, Text: "The walk currently returns the first ReadDir error. It should record the entry and continue with the siblings."},
					{Type: core.BlockText, Text: "I'll check how the walk reports errors today."},
					{Type: core.BlockToolUse, ToolUseID: "toolu_01", Name: "Read", Input: map[string]any{"file_path": "layout/walk.go"}},
				},
			},
			{
				Role:      core.RoleUser,
				Timestamp: &t2,
				Content: []core.ContentBlock{
					{Type: core.BlockToolResult, ToolUseID: "toolu_01", Content: "func walkProjectDirs(ctx context.Context, root string, limit int) WalkResult {\n\tentries, err := os.ReadDir(root)\n\tif err != nil {\n\t\treturn WalkResult{}, err\n\t}\n\t..."},
				},
			},
			{
				Role:      core.RoleAssistant,
				Timestamp: &t3,
				Content: []core.ContentBlock{
					{Type: core.BlockText, Text: "The error aborts the walk. I'll collect it as a skipped entry instead:\n\n```go\nres.Skipped = append(res.Skipped, Skip{Path: dir, Err: err})\n```"},
					{Type: core.BlockToolUse, ToolUseID: "toolu_02", Name: "Edit", Input: map[string]any{
						"file_path":  "layout/walk.go",
						"old_string": "return WalkResult{}, err",
						"new_string": "res.Skipped = append(res.Skipped, Skip{Path: root, Err: err})\nreturn res",
					}},
				},
			},
			{
				Role:      core.RoleUser,
				Timestamp: &t4,
				Content: []core.ContentBlock{
					{Type: core.BlockToolResult, ToolUseID: "toolu_02", Content: "The file layout/walk.go has been updated."},
				},
			},
			{
				Role:      core.RoleAssistant,
				Timestamp: &t5,
				Content: []core.ContentBlock{
					{Type: core.BlockToolUse, ToolUseID: "toolu_03", Name: "Bash", Input: map[string]any{"command": "go test ./layout/..."}},
				},
			},
			{
				Role:      core.RoleUser,
				Timestamp: &end,
				Content: []core.ContentBlock{
					{Type: core.BlockToolResult, ToolUseID: "toolu_03", Content: "ok  \tlayout\t0.412s"},
				},
			},
			{
				Role:      core.RoleAssistant,
				Timestamp: &end,
				Content: []core.ContentBlock{
					{Type: core.BlockText, Text: "Done. Unreadable directories now land in `WalkResult.Skipped` and the walk continues with the remaining entries."},
				},
			},
		},
	}

	r := htmlrender.New()
	if err := r.Render(os.Stdout, d); err != nil {
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
