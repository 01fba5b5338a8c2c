package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// commandNameRE extracts the slash command name from <command-name>/foo</command-name>.
var commandNameRE = regexp.MustCompile(`<command-name>(/[^<]+)</command-name>`)

// commandArgsRE extracts arguments from <command-args>...</command-args>.
var commandArgsRE = regexp.MustCompile(`<command-args>([^<]*)</command-args>`)

// openTagRE matches an XML opening tag like <tag-name> or <tag_name attr="val">.
var openTagRE = regexp.MustCompile(`<([a-zA-Z_][a-zA-Z0-9_-]*)[^>]*>`)

// CleanUserText strips system-injected XML from user text for display.
//
// Slash commands (containing <command-name>) are shortened to "/name args".
// All other XML block elements are removed entirely (tag + content).
func CleanUserText(s string) string {
	// Slash commands: extract /name and optional args.
	if m := commandNameRE.FindStringSubmatch(s); m != nil {
		name := m[1]
		if a := commandArgsRE.FindStringSubmatch(s); a != nil && strings.TrimSpace(a[1]) != "" {
			return name + " " + strings.TrimSpace(a[1])
		}
		return name
	}

	// Strip <tag>...</tag> blocks by finding opening tags and their matching
	// closing tags. Go regexp has no backreferences, so walk matches manually.
	for {
		loc := openTagRE.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		tagName := s[loc[2]:loc[3]]
		closeTag := "</" + tagName + ">"
		closeIdx := strings.Index(s[loc[1]:], closeTag)
		if closeIdx < 0 {
			// No matching close tag: strip just the open tag.
			s = s[:loc[0]] + s[loc[1]:]
			continue
		}
		end := loc[1] + closeIdx + len(closeTag)
		s = s[:loc[0]] + s[end:]
	}

	return strings.TrimSpace(s)
}

// DeriveTitle extracts a session title from the first genuine user text
// block, skipping IDE metadata tags. Truncated to 80 characters on a word
// boundary.
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser || IsToolResultOnly(m) {
			continue
		}
		for _, b := range m.Content {
			if b.Type != BlockText {
				continue
			}
			text := strings.TrimSpace(CleanUserText(b.Text))
			if text == "" || strings.Contains(text, "<ide_opened_file>") {
				continue
			}
			return truncate(text, 80)
		}
		break
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if i := strings.LastIndex(s[:maxLen], " "); i > 0 {
		return s[:i] + "..."
	}
	return s[:maxLen] + "..."
}

// RelativeTime formats a time.Time as a human-readable relative string.
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
