// Package json renders sessions as JSON (serializes the parsed form as-is).
package json

import (
	"encoding/json"
	"io"

	"github.com/sonnes/lekha/core"
)

// Renderer renders a session to JSON.
type Renderer struct {
	// Indent controls pretty-printing. When true, output is indented.
	Indent bool
}

// Render writes the session as a single JSON document to w.
func (r *Renderer) Render(w io.Writer, d *core.SessionDetail) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(d)
}
