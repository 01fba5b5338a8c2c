package scan

import (
	"errors"
	"fmt"
	"os"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/layout"
)

// Parse decodes a full session file into a detail with derived fields
// populated. Malformed lines are counted and skipped rather than failing
// the whole file.
func Parse(path string, kind layout.Kind) (*core.SessionDetail, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	var d *core.SessionDetail
	switch kind {
	case layout.DateSharded:
		d, err = parseCodex(f)
	default:
		d, err = parseClaude(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if len(d.Messages) == 0 {
		return nil, errors.New("no messages found in session")
	}

	d.ID = kind.SessionID(path)
	d.Path = path
	d.ProjectKey = d.CWD
	d.Title = core.DeriveTitle(d.Messages)
	d.ToolCounts = core.ToolCounts(d.Messages)
	d.DiffStats = core.ComputeDiffStats(d.Messages)
	return d, nil
}
