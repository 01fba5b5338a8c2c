package scan

import (
	"bytes"
	"os"
	"time"

	"github.com/sonnes/lekha/core"
	"github.com/sonnes/lekha/layout"
)

// summaryState accumulates per-line counters during a summary pass.
type summaryState struct {
	msgCount  int
	realTurns int
	firstAt   time.Time
	lastAt    time.Time
	cwd       string
	malformed int
}

func (s *summaryState) observeTimestamp(raw string) {
	ts := parseTime(raw)
	if ts.IsZero() {
		return
	}
	if s.firstAt.IsZero() {
		s.firstAt = ts
	}
	s.lastAt = ts
}

// Summarize reads a session file once and reports its listing entry.
// Sessions with no messages, no timestamps, or too few real user turns
// are not worth listing and report ok=false.
func Summarize(path string, kind layout.Kind) (core.SessionSummary, bool) {
	f, err := os.Open(path)
	if err != nil {
		return core.SessionSummary{}, false
	}
	defer f.Close()

	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}

	var s summaryState
	scanner := newLineScanner(f)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		switch kind {
		case layout.ProjectsDir:
			if bytes.Contains(line, interruptMarker) {
				continue
			}
			claudeSummaryStep(line, &s)
		case layout.DateSharded:
			codexSummaryStep(line, &s)
		}
	}

	if s.msgCount == 0 {
		return core.SessionSummary{}, false
	}
	if s.firstAt.IsZero() && s.lastAt.IsZero() {
		return core.SessionSummary{}, false
	}
	if s.realTurns < kind.MinRealTurns() {
		return core.SessionSummary{}, false
	}

	return core.SessionSummary{
		ID:           kind.SessionID(path),
		ProjectKey:   s.cwd,
		Path:         path,
		FirstAt:      s.firstAt,
		LastAt:       s.lastAt,
		MessageCount: s.msgCount,
		RealTurns:    s.realTurns,
		Size:         size,
	}, true
}
