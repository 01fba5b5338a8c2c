// Package index aggregates session summaries into logical projects keyed by
// working directory or, provisionally, by project directory name. Merging is
// commutative and idempotent so parallel scans can feed one index in any
// order and arrive at the same result.
package index

import (
	"sort"
	"sync"
	"time"

	"github.com/sonnes/lekha/core"
)

// Index is safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	key      string
	cwd      string
	last     time.Time
	sessions map[string]core.SessionSummary
}

func New() *Index {
	return &Index{entries: make(map[string]*entry)}
}

// Add merges one session summary into the project keyed by key. Last
// activity takes the maximum, the session set is a union, and when the same
// session id arrives twice the later-modified summary wins. cwd may be empty
// when the key is not derived from a resolved working directory.
func (ix *Index) Add(key, cwd string, s core.SessionSummary) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	e := ix.entry(key)
	if e.cwd == "" {
		e.cwd = cwd
	}
	e.merge(s)
}

// Rekey moves the project at old under its resolved working directory,
// merging with any project already keyed by it. A missing old key is a no-op.
func (ix *Index) Rekey(old, cwd string) {
	if old == cwd || cwd == "" {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	src, ok := ix.entries[old]
	if !ok {
		return
	}
	delete(ix.entries, old)

	dst := ix.entry(cwd)
	dst.cwd = cwd
	if src.last.After(dst.last) {
		dst.last = src.last
	}
	for _, s := range src.sessions {
		dst.merge(s)
	}
}

func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Projects materializes the index sorted by most recent activity, ties
// broken by key so output order is deterministic. Session lists inside each
// project are sorted the same way.
func (ix *Index) Projects() []core.Project {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]core.Project, 0, len(ix.entries))
	for _, e := range ix.entries {
		p := core.Project{
			Key:          e.key,
			CWD:          e.cwd,
			SessionCount: len(e.sessions),
			LastActivity: e.last,
			Sessions:     make([]core.SessionSummary, 0, len(e.sessions)),
		}
		for _, s := range e.sessions {
			s.ProjectKey = e.key
			p.Sessions = append(p.Sessions, s)
		}
		sort.Slice(p.Sessions, func(i, j int) bool {
			a, b := p.Sessions[i], p.Sessions[j]
			if !a.LastAt.Equal(b.LastAt) {
				return a.LastAt.After(b.LastAt)
			}
			return a.ID < b.ID
		})
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.LastActivity.Equal(b.LastActivity) {
			return a.LastActivity.After(b.LastActivity)
		}
		return a.Key < b.Key
	})
	return out
}

// entry returns the project entry for key, creating it if needed. The caller
// must hold mu.
func (ix *Index) entry(key string) *entry {
	e, ok := ix.entries[key]
	if !ok {
		e = &entry{key: key, sessions: make(map[string]core.SessionSummary)}
		ix.entries[key] = e
	}
	return e
}

func (e *entry) merge(s core.SessionSummary) {
	if s.LastAt.After(e.last) {
		e.last = s.LastAt
	}
	prev, ok := e.sessions[s.ID]
	if !ok || s.LastAt.After(prev.LastAt) {
		e.sessions[s.ID] = s
	}
}
