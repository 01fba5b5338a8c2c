package history

import (
	"context"
	"sync"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/index"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/scan"
)

// ProjectOptions shape a Projects listing.
type ProjectOptions struct {
	// Limit keeps only the most recently active projects. 0 means all.
	Limit int
	// ResolveCWD reads the newest session header of each directory-keyed
	// project and replaces the munged directory name with the real working
	// directory. Layouts whose key already is the cwd ignore it.
	ResolveCWD bool
}

// Projects lists the logical projects under the store's root, most recently
// active first. A missing root is an empty listing, not an error.
func (s *Store) Projects(ctx context.Context, opts ProjectOptions) []core.Project {
	ix := index.New()
	switch s.Layout.Kind {
	case layout.DateSharded:
		s.projectsByHeader(ctx, ix, opts.Limit)
	default:
		s.projectsByDir(ctx, ix, opts)
	}

	projects := ix.Projects()
	if opts.Limit > 0 && len(projects) > opts.Limit {
		projects = projects[:opts.Limit]
	}
	return projects
}

// Search lists projects matching the filter. Working directories are
// resolved first so keywords match real paths rather than munged names.
func (s *Store) Search(ctx context.Context, f index.Filter) []core.Project {
	return f.Apply(s.Projects(ctx, ProjectOptions{ResolveCWD: true}))
}

// projectsByDir keys projects by their directory name. Every file reference
// is free to attribute, so the index fills without reading file contents;
// resolution then rewrites the most recent keys from session headers.
func (s *Store) projectsByDir(ctx context.Context, ix *index.Index, opts ProjectOptions) {
	result := s.Layout.Walk(ctx, opts.Limit)
	logSkips(result.Skipped)

	newest := make(map[string]layout.FileRef)
	for _, ref := range result.Files {
		ix.Add(ref.Dir, "", core.SessionSummary{
			ID:         s.Layout.Kind.SessionID(ref.Path),
			ProjectKey: ref.Dir,
			Path:       ref.Path,
			LastAt:     ref.ModTime,
			Size:       ref.Size,
		})
		if cur, ok := newest[ref.Dir]; !ok || ref.ModTime.After(cur.ModTime) {
			newest[ref.Dir] = ref
		}
	}

	if !opts.ResolveCWD {
		return
	}

	// The walk already kept only the most recent directories when a limit is
	// set, so "all walked" is the resolution bound. A header without a cwd
	// leaves the directory key in place; distinct unresolvable projects must
	// not collapse into one another.
	type target struct {
		dir  string
		path string
	}
	type resolved struct {
		dir string
		cwd string
	}
	jobs := make(chan target)
	results := make(chan resolved, len(newest))

	var wg sync.WaitGroup
	for i := 0; i < s.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if h := scan.ReadHeader(t.path, s.Layout.Kind); h.CWD != "" {
					results <- resolved{dir: t.dir, cwd: h.CWD}
				}
			}
		}()
	}

feed:
	for dir, ref := range newest {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- target{dir: dir, path: ref.Path}:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	for r := range results {
		ix.Rekey(r.dir, r.cwd)
	}
}

// projectsByHeader keys projects by the cwd recovered from each file's
// header. Files come newest-first, so once limit distinct projects exist the
// remaining, older files are not worth scanning and feeding stops.
func (s *Store) projectsByHeader(ctx context.Context, ix *index.Index, limit int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := s.Layout.Walk(ctx, 0)
	logSkips(result.Skipped)

	jobs := make(chan layout.FileRef)
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				h := scan.ReadHeader(ref.Path, s.Layout.Kind)
				key, cwd := h.CWD, h.CWD
				if key == "" {
					key, cwd = core.UnknownProject, ""
				}
				ix.Add(key, cwd, core.SessionSummary{
					ID:         s.Layout.Kind.SessionID(ref.Path),
					ProjectKey: key,
					Path:       ref.Path,
					LastAt:     ref.ModTime,
					Size:       ref.Size,
				})
				if limit > 0 && ix.Len() >= limit {
					cancel()
				}
			}
		}()
	}

feed:
	for _, ref := range result.Files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- ref:
		}
	}
	close(jobs)
	wg.Wait()
}
