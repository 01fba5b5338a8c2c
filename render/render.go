// Package render defines the interface for rendering parsed sessions into
// various output formats.
package render

import (
	"io"

	"github.com/sonnes/lekha/core"
)

// Renderer writes a session to the given writer in a specific format.
type Renderer interface {
	Render(w io.Writer, d *core.SessionDetail) error
}
