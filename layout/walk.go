package layout

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileRef points at one live session file discovered by a walk. Values are
// immutable; re-scans produce fresh ones.
type FileRef struct {
	Path    string
	Dir     string // owning project directory name; empty for DateSharded roots
	Size    int64
	ModTime time.Time
}

// Skip records an entry the walker could not read and moved past.
type Skip struct {
	Path string
	Err  error
}

// WalkResult carries the files a walk produced plus the entries it skipped.
// A walk never fails wholesale because of one bad entry.
type WalkResult struct {
	Files   []FileRef
	Skipped []Skip
}

// Walk traverses the layout root and returns every live session file.
//
// ProjectsDir roots are walked exactly two levels deep: project directories
// newest first, then their .jsonl files. When limit > 0 only the first limit
// project directories are read, so probing the front of the list never pays
// for a full walk. DateSharded roots are walked year/month/day, newest
// first; limit has no effect there because project identity lives in file
// content, so callers bound that scan by cancelling ctx once they have
// enough distinct projects.
//
// A missing root yields an empty result, not an error. Unreadable entries
// land in Skipped and the walk continues. Cancelling ctx stops the walk;
// whatever was already collected is returned.
func (l Layout) Walk(ctx context.Context, limit int) WalkResult {
	switch l.Kind {
	case DateSharded:
		return walkDateShards(ctx, l.Root)
	default:
		return walkProjectDirs(ctx, l.Root, limit)
	}
}

// walkWorkers bounds per-directory fan-out. Sibling directories are disjoint
// subtrees, so listing them concurrently shares no mutable state.
func walkWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	return n
}

func walkProjectDirs(ctx context.Context, root string, limit int) WalkResult {
	var res WalkResult

	entries, err := os.ReadDir(root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			res.Skipped = append(res.Skipped, Skip{Path: root, Err: err})
		}
		return res
	}

	type projectDir struct {
		name    string
		modTime time.Time
	}
	var dirs []projectDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Path: filepath.Join(root, e.Name()), Err: err})
			continue
		}
		dirs = append(dirs, projectDir{name: e.Name(), modTime: info.ModTime()})
	}

	sort.Slice(dirs, func(i, j int) bool {
		if !dirs[i].modTime.Equal(dirs[j].modTime) {
			return dirs[i].modTime.After(dirs[j].modTime)
		}
		return dirs[i].name < dirs[j].name
	})
	if limit > 0 && len(dirs) > limit {
		dirs = dirs[:limit]
	}

	perDir := make([]WalkResult, len(dirs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < walkWorkers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perDir[i] = listSessionFiles(filepath.Join(root, dirs[i].name), dirs[i].name, true)
			}
		}()
	}

feed:
	for i := range dirs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for _, r := range perDir {
		res.Files = append(res.Files, r.Files...)
		res.Skipped = append(res.Skipped, r.Skipped...)
	}
	return res
}

func walkDateShards(ctx context.Context, root string) WalkResult {
	var res WalkResult

	dayDirs, skipped := listShardDirs(ctx, root)
	res.Skipped = skipped

	perDay := make([]WalkResult, len(dayDirs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < walkWorkers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perDay[i] = listSessionFiles(dayDirs[i], "", false)
			}
		}()
	}

feed:
	for i := range dayDirs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	// Day directories are already newest first; keep files within a day
	// newest first too so early consumers see recent sessions.
	for i := range perDay {
		files := perDay[i].Files
		sort.Slice(files, func(a, b int) bool {
			if !files[a].ModTime.Equal(files[b].ModTime) {
				return files[a].ModTime.After(files[b].ModTime)
			}
			return files[a].Path < files[b].Path
		})
		res.Files = append(res.Files, files...)
		res.Skipped = append(res.Skipped, perDay[i].Skipped...)
	}
	return res
}

// listShardDirs collects year/month/day directories, newest first. Shard
// names are zero-padded digits, so descending lexical order is descending
// date order.
func listShardDirs(ctx context.Context, root string) ([]string, []Skip) {
	var dirs []string
	var skipped []Skip

	years, ok := readShardLevel(root, &skipped)
	if !ok {
		return nil, skipped
	}
	for _, year := range years {
		if ctx.Err() != nil {
			break
		}
		yearDir := filepath.Join(root, year)
		months, _ := readShardLevel(yearDir, &skipped)
		for _, month := range months {
			if ctx.Err() != nil {
				break
			}
			monthDir := filepath.Join(yearDir, month)
			days, _ := readShardLevel(monthDir, &skipped)
			for _, day := range days {
				dirs = append(dirs, filepath.Join(monthDir, day))
			}
		}
	}
	return dirs, skipped
}

// readShardLevel lists the subdirectory names of dir in descending order.
// A missing dir reports ok=false; other errors are recorded and skipped.
func readShardLevel(dir string, skipped *[]Skip) ([]string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			*skipped = append(*skipped, Skip{Path: dir, Err: err})
		}
		return nil, false
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, true
}

// listSessionFiles returns the live .jsonl files directly inside dir.
// Empty files are not sessions; agent-* sidechain files are excluded from
// ProjectsDir roots.
func listSessionFiles(dir, project string, skipAgents bool) WalkResult {
	var res WalkResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		res.Skipped = append(res.Skipped, Skip{Path: dir, Err: err})
		return res
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		if skipAgents && strings.HasPrefix(name, "agent-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Path: filepath.Join(dir, name), Err: err})
			continue
		}
		if info.Size() == 0 {
			continue
		}
		res.Files = append(res.Files, FileRef{
			Path:    filepath.Join(dir, name),
			Dir:     project,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return res
}
