package index

import (
	"strings"
	"time"

	"github.com/sonnes/lekha/core"
)

// Filter narrows a materialized project list. The zero value matches
// everything. Filters run purely over index state and never touch the
// filesystem.
type Filter struct {
	// Keyword matches case-insensitively as a substring of the project key.
	Keyword string
	// Since and Until bound last activity inclusively. A zero time leaves
	// that side unconstrained.
	Since time.Time
	Until time.Time
}

func (f Filter) Apply(projects []core.Project) []core.Project {
	keyword := strings.ToLower(f.Keyword)

	var out []core.Project
	for _, p := range projects {
		if keyword != "" && !strings.Contains(strings.ToLower(p.Key), keyword) {
			continue
		}
		if !f.Since.IsZero() && p.LastActivity.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && p.LastActivity.After(f.Until) {
			continue
		}
		out = append(out, p)
	}
	return out
}
