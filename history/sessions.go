package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/scan"
)

// ErrNotFound reports a session id no walk could locate. Callers that serve
// requests use it to tell a bad id from a bad file.
var ErrNotFound = errors.New("session not found")

// Sessions lists the viable sessions of one project, newest first. The
// project may be named by its key or, for directory-keyed layouts, by the
// absolute working directory it resolves to.
func (s *Store) Sessions(ctx context.Context, projectKey string) []core.SessionSummary {
	result := s.Layout.Walk(ctx, 0)
	logSkips(result.Skipped)

	var refs []layout.FileRef
	if s.Layout.Kind == layout.DateSharded {
		refs = result.Files
	} else {
		munged := layout.ProjectDirName(projectKey)
		for _, ref := range result.Files {
			if ref.Dir == projectKey || ref.Dir == munged {
				refs = append(refs, ref)
			}
		}
	}

	jobs := make(chan layout.FileRef)
	results := make(chan core.SessionSummary, len(refs))

	var wg sync.WaitGroup
	for i := 0; i < s.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				if s.Layout.Kind == layout.DateSharded && !s.headerMatches(ref.Path, projectKey) {
					continue
				}
				sum, ok := scan.Summarize(ref.Path, s.Layout.Kind)
				if !ok {
					continue
				}
				sum.ProjectKey = projectKey
				if ref.Dir != "" {
					sum.ProjectKey = ref.Dir
				}
				results <- sum
			}
		}()
	}

feed:
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- ref:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	var sessions []core.SessionSummary
	for sum := range results {
		sessions = append(sessions, sum)
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.LastAt.Equal(b.LastAt) {
			return a.LastAt.After(b.LastAt)
		}
		return a.ID < b.ID
	})
	return sessions
}

// headerMatches gates a sharded file by its header cwd before the heavier
// summarize pass. The unknown sentinel matches files with no recoverable cwd.
func (s *Store) headerMatches(path, projectKey string) bool {
	h := scan.ReadHeader(path, s.Layout.Kind)
	if h.CWD == "" {
		return projectKey == core.UnknownProject
	}
	return h.CWD == projectKey
}

// Detail returns the fully parsed session, cache-backed. Parse failures
// surface to the caller and are never cached, so a later retry can succeed.
func (s *Store) Detail(ctx context.Context, sessionID string) (*core.SessionDetail, error) {
	return s.cache.GetOrLoad(sessionID, func() (*core.SessionDetail, error) {
		ref, ok := s.findSession(ctx, sessionID)
		if !ok {
			return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
		}
		d, err := scan.Parse(ref.Path, s.Layout.Kind)
		if err != nil {
			return nil, err
		}
		if d.ProjectKey == "" {
			d.ProjectKey = ref.Dir
			if d.ProjectKey == "" {
				d.ProjectKey = core.UnknownProject
			}
		}
		return d, nil
	})
}

func (s *Store) findSession(ctx context.Context, sessionID string) (layout.FileRef, bool) {
	result := s.Layout.Walk(ctx, 0)
	for _, ref := range result.Files {
		if s.Layout.Kind.SessionID(ref.Path) == sessionID {
			return ref, true
		}
	}
	return layout.FileRef{}, false
}
