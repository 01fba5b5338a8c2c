package core

import "strings"

// ToolCounts tallies tool_use invocations by tool name across all messages.
func ToolCounts(messages []Message) map[string]int {
	counts := make(map[string]int)
	for _, m := range messages {
		for _, b := range m.Content {
			if b.Type == BlockToolUse && b.Name != "" {
				counts[b.Name]++
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

// ComputeDiffStats walks all tool_use blocks and computes aggregate
// line-level edit statistics. It must run BEFORE any compact transform,
// which replaces tool input strings with summaries.
func ComputeDiffStats(messages []Message) *DiffStats {
	files := make(map[string]bool)
	var added, removed int

	for _, msg := range messages {
		for _, b := range msg.Content {
			if b.Type != BlockToolUse {
				continue
			}
			m, ok := b.Input.(map[string]any)
			if !ok || m == nil {
				continue
			}

			switch strings.ToLower(b.Name) {
			case "write":
				if fp := stringVal(m, "file_path"); fp != "" {
					files[fp] = true
				}
				if content := stringVal(m, "content"); content != "" {
					added += countLines(content)
				}
			case "edit":
				if fp := stringVal(m, "file_path"); fp != "" {
					files[fp] = true
				}
				if old := stringVal(m, "old_string"); old != "" {
					removed += countLines(old)
				}
				if ns := stringVal(m, "new_string"); ns != "" {
					added += countLines(ns)
				}
			}
		}
	}

	if added == 0 && removed == 0 && len(files) == 0 {
		return nil
	}

	return &DiffStats{
		Added:   added,
		Removed: removed,
		Changed: len(files),
	}
}

func stringVal(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
