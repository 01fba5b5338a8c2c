package core

// RealTurnCount reports how many user messages carry genuine human input.
// The tool-result-only user records a CLI writes between assistant steps do
// not count.
func RealTurnCount(messages []Message) int {
	n := 0
	for i := range messages {
		if messages[i].Role == RoleUser && !IsToolResultOnly(messages[i]) {
			n++
		}
	}
	return n
}

// IsToolResultOnly reports whether a message contains only tool_result
// blocks. Such messages are plumbing, not human turns.
func IsToolResultOnly(msg Message) bool {
	if len(msg.Content) == 0 {
		return false
	}
	for _, b := range msg.Content {
		if b.Type != BlockToolResult {
			return false
		}
	}
	return true
}
