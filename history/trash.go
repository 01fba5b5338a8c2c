package history

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/layout"
	"github.com/sonnes/lekha/scan"
	"github.com/sonnes/lekha/trash"
)

// Trash soft-deletes the given sessions and reports how many moved. Unknown
// ids and per-session failures are logged and skipped so one bad id never
// aborts the batch.
func (s *Store) Trash(ctx context.Context, sessionIDs []string) int {
	result := s.Layout.Walk(ctx, 0)
	logSkips(result.Skipped)

	byID := make(map[string]layout.FileRef, len(result.Files))
	for _, ref := range result.Files {
		byID[s.Layout.Kind.SessionID(ref.Path)] = ref
	}

	moved := 0
	for _, id := range sessionIDs {
		ref, ok := byID[id]
		if !ok {
			log.Warn("session not found", "id", id)
			continue
		}
		if _, err := s.trash.Move(id, s.projectKeyFor(ref), ref.Path); err != nil {
			log.Warn("trash failed", "id", id, "error", err)
			continue
		}
		s.cache.Invalidate(id)
		moved++
	}
	return moved
}

// projectKeyFor recovers the owning project key for a file reference, which
// trash records keep so a restore can name what came back.
func (s *Store) projectKeyFor(ref layout.FileRef) string {
	if ref.Dir != "" {
		return ref.Dir
	}
	if h := scan.ReadHeader(ref.Path, s.Layout.Kind); h.CWD != "" {
		return h.CWD
	}
	return core.UnknownProject
}

// TrashRecords lists the trash, newest deletions first.
func (s *Store) TrashRecords() ([]trash.Record, error) {
	return s.trash.List()
}

// Restore returns a trashed session to its original path. The next listing
// picks it up again; nothing cached may survive the transition.
func (s *Store) Restore(rec trash.Record) error {
	if err := s.trash.Restore(rec); err != nil {
		return err
	}
	s.cache.Invalidate(rec.SessionID)
	return nil
}

// PurgeRecord permanently deletes one trashed session. Irreversible; the
// caller owns the confirmation prompt.
func (s *Store) PurgeRecord(rec trash.Record) error {
	s.cache.Invalidate(rec.SessionID)
	return s.trash.Delete(rec)
}

// SweepTrash removes expired records. NewStore already runs this once per
// process start; this is for an explicit "empty old trash now".
func (s *Store) SweepTrash(retentionDays int) (int, error) {
	return s.trash.Sweep(retentionDays)
}
