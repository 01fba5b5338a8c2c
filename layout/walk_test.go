package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSession creates a session file with content and the given mtime.
func writeSession(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"user"}`+"\n"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestWalkProjectsDir(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	writeSession(t, filepath.Join(root, "-home-u-alpha", "s1.jsonl"), now.Add(-2*time.Hour))
	writeSession(t, filepath.Join(root, "-home-u-alpha", "s2.jsonl"), now.Add(-1*time.Hour))
	writeSession(t, filepath.Join(root, "-home-u-beta", "s3.jsonl"), now)

	// Entries the walker must ignore.
	writeSession(t, filepath.Join(root, "-home-u-alpha", "agent-x.jsonl"), now)
	require.NoError(t, os.WriteFile(filepath.Join(root, "-home-u-alpha", "empty.jsonl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "-home-u-alpha", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.jsonl"), []byte("x"), 0o644))

	l := Layout{CLI: "claude", Kind: ProjectsDir, Root: root}
	res := l.Walk(context.Background(), 0)

	require.Len(t, res.Files, 3)
	assert.Empty(t, res.Skipped)

	byDir := map[string]int{}
	for _, f := range res.Files {
		byDir[f.Dir]++
		assert.Greater(t, f.Size, int64(0))
	}
	assert.Equal(t, 2, byDir["-home-u-alpha"])
	assert.Equal(t, 1, byDir["-home-u-beta"])
}

func TestWalkProjectsDirLimit(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	writeSession(t, filepath.Join(root, "older", "s1.jsonl"), now.Add(-time.Hour))
	writeSession(t, filepath.Join(root, "newer", "s2.jsonl"), now)
	require.NoError(t, os.Chtimes(filepath.Join(root, "older"), now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(filepath.Join(root, "newer"), now, now))

	l := Layout{CLI: "claude", Kind: ProjectsDir, Root: root}
	res := l.Walk(context.Background(), 1)

	require.Len(t, res.Files, 1)
	assert.Equal(t, "newer", res.Files[0].Dir)
}

func TestWalkMissingRoot(t *testing.T) {
	for _, kind := range []Kind{ProjectsDir, DateSharded} {
		l := Layout{Kind: kind, Root: filepath.Join(t.TempDir(), "does-not-exist")}
		res := l.Walk(context.Background(), 0)
		assert.Empty(t, res.Files, kind.String())
		assert.Empty(t, res.Skipped, kind.String())
	}
}

func TestWalkDateSharded(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	writeSession(t, filepath.Join(root, "2025", "01", "05", "rollout-old.jsonl"), now.Add(-48*time.Hour))
	writeSession(t, filepath.Join(root, "2025", "01", "06", "rollout-mid.jsonl"), now.Add(-24*time.Hour))
	writeSession(t, filepath.Join(root, "2025", "02", "01", "rollout-new.jsonl"), now)
	require.NoError(t, os.WriteFile(filepath.Join(root, "2025", "02", "01", "empty.jsonl"), nil, 0o644))

	l := Layout{CLI: "codex", Kind: DateSharded, Root: root}
	res := l.Walk(context.Background(), 0)

	require.Len(t, res.Files, 3)
	assert.Empty(t, res.Skipped)

	// Newest shard first.
	assert.Contains(t, res.Files[0].Path, "rollout-new.jsonl")
	assert.Contains(t, res.Files[1].Path, "rollout-mid.jsonl")
	assert.Contains(t, res.Files[2].Path, "rollout-old.jsonl")

	for _, f := range res.Files {
		assert.Empty(t, f.Dir)
	}
}

func TestWalkCancelled(t *testing.T) {
	root := t.TempDir()
	writeSession(t, filepath.Join(root, "2025", "01", "06", "rollout-a.jsonl"), time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := Layout{CLI: "codex", Kind: DateSharded, Root: root}
	res := l.Walk(ctx, 0)
	assert.Empty(t, res.Files)
}

func TestWalkSkipsUnreadableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	now := time.Now()
	writeSession(t, filepath.Join(root, "readable", "s1.jsonl"), now)
	writeSession(t, filepath.Join(root, "locked", "s2.jsonl"), now)
	require.NoError(t, os.Chmod(filepath.Join(root, "locked"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "locked"), 0o755) })

	l := Layout{CLI: "claude", Kind: ProjectsDir, Root: root}
	res := l.Walk(context.Background(), 0)

	require.Len(t, res.Files, 1)
	assert.Equal(t, "readable", res.Files[0].Dir)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Path, "locked")
}
