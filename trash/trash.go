// Package trash soft-deletes session files. A trashed session is physically
// moved out of the live tree into a per-layout trash area and tracked by a
// persisted record, so it can be restored to its exact original path or
// permanently removed once the retention window passes.
package trash

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Record describes one trashed session. DirName is the directory under the
// trash area holding the moved file; OriginalPath is where restore puts it
// back.
type Record struct {
	SessionID    string    `json:"session_id"`
	ProjectKey   string    `json:"project_key,omitempty"`
	DirName      string    `json:"dir_name"`
	OriginalPath string    `json:"original_path"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// ConflictError reports a move or restore that would overwrite an existing
// path. The store never overwrites; the caller decides what to do.
type ConflictError struct {
	SessionID string
	Path      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("trash conflict for session %s: %s already exists", e.SessionID, e.Path)
}

// Store manages one trash area. All read-modify-write sequences on the
// record set are serialized, so a restore can never race a sweep's
// permanent delete of the same session.
type Store struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.dir, "manifest.json")
}

// Move relocates the session file at originalPath into the trash area and
// records it. The returned record is what List and Restore will see.
func (s *Store) Move(sessionID, projectKey, originalPath string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirName := fmt.Sprintf("%s_%d", sessionID, s.now().Unix())
	destDir := filepath.Join(s.dir, dirName)
	if _, err := os.Stat(destDir); err == nil {
		return Record{}, &ConflictError{SessionID: sessionID, Path: destDir}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Record{}, fmt.Errorf("create trash dir: %w", err)
	}

	dest := filepath.Join(destDir, filepath.Base(originalPath))
	if err := moveFile(originalPath, dest); err != nil {
		os.Remove(destDir)
		return Record{}, fmt.Errorf("move to trash: %w", err)
	}

	rec := Record{
		SessionID:    sessionID,
		ProjectKey:   projectKey,
		DirName:      dirName,
		OriginalPath: originalPath,
		DeletedAt:    s.now(),
	}

	m, err := readManifest(s.manifestPath())
	if err != nil {
		return Record{}, err
	}
	m.Records = append(m.Records, rec)
	if err := m.write(s.manifestPath()); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns all records, newest deletion first. A missing trash area is
// an empty list.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := readManifest(s.manifestPath())
	if err != nil {
		return nil, err
	}
	sort.Slice(m.Records, func(i, j int) bool {
		a, b := m.Records[i], m.Records[j]
		if !a.DeletedAt.Equal(b.DeletedAt) {
			return a.DeletedAt.After(b.DeletedAt)
		}
		return a.SessionID < b.SessionID
	})
	return m.Records, nil
}

// Restore moves a trashed session back to its original path and drops the
// record. It fails with ConflictError if the original path is occupied, and
// never overwrites.
func (s *Store) Restore(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trashed := filepath.Join(s.dir, rec.DirName, filepath.Base(rec.OriginalPath))
	if _, err := os.Stat(trashed); err != nil {
		return fmt.Errorf("trashed file missing: %w", err)
	}
	if _, err := os.Stat(rec.OriginalPath); err == nil {
		return &ConflictError{SessionID: rec.SessionID, Path: rec.OriginalPath}
	}

	if err := os.MkdirAll(filepath.Dir(rec.OriginalPath), 0o755); err != nil {
		return fmt.Errorf("recreate project dir: %w", err)
	}
	if err := moveFile(trashed, rec.OriginalPath); err != nil {
		return fmt.Errorf("restore from trash: %w", err)
	}
	os.RemoveAll(filepath.Join(s.dir, rec.DirName))

	return s.dropRecord(rec)
}

// Delete permanently removes a trashed session. Irreversible; confirmation
// belongs to the caller.
func (s *Store) Delete(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(s.dir, rec.DirName)); err != nil {
		return fmt.Errorf("delete trashed session: %w", err)
	}
	return s.dropRecord(rec)
}

// Sweep permanently deletes records older than the retention window and
// reports how many were removed. Records exactly at the boundary survive.
func (s *Store) Sweep(retentionDays int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := readManifest(s.manifestPath())
	if err != nil {
		return 0, err
	}
	if len(m.Records) == 0 {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	kept := m.Records[:0]
	removed := 0
	for _, rec := range m.Records {
		if rec.DeletedAt.Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(s.dir, rec.DirName)); err != nil {
				return removed, fmt.Errorf("sweep %s: %w", rec.SessionID, err)
			}
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}

	m.Records = kept
	if err := m.write(s.manifestPath()); err != nil {
		return removed, err
	}
	return removed, nil
}

// dropRecord removes rec from the manifest, matching by DirName which is
// unique per trashed copy. The caller must hold mu.
func (s *Store) dropRecord(rec Record) error {
	m, err := readManifest(s.manifestPath())
	if err != nil {
		return err
	}
	kept := m.Records[:0]
	for _, r := range m.Records {
		if r.DirName != rec.DirName {
			kept = append(kept, r)
		}
	}
	m.Records = kept
	return m.write(s.manifestPath())
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// trash area lives on a different filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
