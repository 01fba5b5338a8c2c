// Package layout resolves CLI identities to their on-disk session log roots
// and walks those roots according to each one's physical shape.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the physical shape of a session log root.
type Kind int

const (
	// ProjectsDir roots hold one directory per project with session files
	// flat inside (claude: ~/.claude/projects/<munged-cwd>/<id>.jsonl).
	ProjectsDir Kind = iota
	// DateSharded roots nest sessions under year/month/day directories;
	// project identity lives only in file content, never in directory names
	// (codex: ~/.codex/sessions/YYYY/MM/DD/rollout-<id>.jsonl).
	DateSharded
)

func (k Kind) String() string {
	switch k {
	case ProjectsDir:
		return "projects-dir"
	case DateSharded:
		return "date-sharded"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// sessionPrefix is the vendor prefix date-sharded file names carry before
// the session identifier.
const sessionPrefix = "rollout-"

// SessionID derives the normalized session identifier from a file path.
func (k Kind) SessionID(path string) string {
	id := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if k == DateSharded {
		id = strings.TrimPrefix(id, sessionPrefix)
	}
	return id
}

// MinRealTurns is the minimum real-turn count a session needs to appear in
// listings. ProjectsDir listings drop single-turn sessions; DateSharded
// roots keep them.
func (k Kind) MinRealTurns() int {
	if k == ProjectsDir {
		return 2
	}
	return 1
}

// Layout binds a CLI identity to a concrete root directory and its Kind.
type Layout struct {
	CLI  string
	Kind Kind
	Root string
}

// TrashDir is the soft-delete area for this layout, a sibling of the root
// (~/.claude/trash, ~/.codex/trash).
func (l Layout) TrashDir() string {
	return filepath.Join(filepath.Dir(l.Root), "trash")
}

// CLI identities Resolve accepts.
const (
	CLIClaude = "claude"
	CLICodex  = "codex"
)

// CLIs returns the supported CLI identities.
func CLIs() []string {
	return []string{CLIClaude, CLICodex}
}

// UnsupportedCLIError reports a CLI identity Resolve does not know.
type UnsupportedCLIError struct {
	Name string
}

func (e *UnsupportedCLIError) Error() string {
	return fmt.Sprintf("unsupported CLI %q", e.Name)
}

// Resolve maps a CLI identity to its default session log root. An unknown
// identity is a hard failure; a missing root directory is not (walking it
// yields an empty result, the tool may simply never have been used).
func Resolve(cli string) (Layout, error) {
	home, _ := os.UserHomeDir()
	switch cli {
	case CLIClaude:
		return Layout{CLI: cli, Kind: ProjectsDir, Root: filepath.Join(home, ".claude", "projects")}, nil
	case CLICodex:
		return Layout{CLI: cli, Kind: DateSharded, Root: filepath.Join(home, ".codex", "sessions")}, nil
	default:
		return Layout{}, &UnsupportedCLIError{Name: cli}
	}
}

// ProjectDirName returns the munged directory name a ProjectsDir root uses
// for a working directory ("/home/u/proj" becomes "-home-u-proj"). The
// mapping is lossy, which is why resolving the true cwd requires reading
// file content.
func ProjectDirName(cwd string) string {
	return strings.ReplaceAll(cwd, "/", "-")
}
