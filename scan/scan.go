// Package scan parses line-delimited JSON session files. It offers three
// tiers of work: a header scan that stops at the first identity-bearing
// line, a summarize pass that counts records without keeping bodies, and a
// full parse that produces the complete message sequence with statistics.
package scan

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sonnes/lekha/layout"
)

// maxLineSize is the maximum JSONL line size (1 MB). Tool results can exceed
// the default 64 KB bufio.Scanner buffer.
const maxLineSize = 1 << 20

// interruptMarker tags synthetic records a CLI writes when the user aborts a
// turn. They are not conversation content.
var interruptMarker = []byte("[Request interrupted by user")

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)
	return scanner
}

// Header carries the identity metadata a header scan recovers. Either field
// may be zero when the file never states it.
type Header struct {
	CWD       string
	Timestamp time.Time
}

// ReadHeader reads path line by line and returns as soon as a cwd-bearing
// line has been decoded. A cheap substring probe gates JSON decoding, so the
// common case touches only the first lines of a multi-megabyte file. Open
// and read errors degrade to an empty Header, never an error: a file we
// cannot probe simply has no header.
func ReadHeader(path string, kind layout.Kind) Header {
	f, err := os.Open(path)
	if err != nil {
		return Header{}
	}
	defer f.Close()

	var h Header
	scanner := newLineScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if h.Timestamp.IsZero() && bytes.Contains(line, []byte(`"timestamp"`)) {
			var e struct {
				Timestamp string `json:"timestamp"`
			}
			if json.Unmarshal(line, &e) == nil {
				h.Timestamp = parseTime(e.Timestamp)
			}
		}
		if !bytes.Contains(line, []byte(`"cwd"`)) {
			continue
		}
		if cwd := decodeCWD(line, kind); cwd != "" {
			h.CWD = cwd
			return h
		}
	}
	return h
}

// decodeCWD extracts the working directory from one record. ProjectsDir
// records carry cwd at the top level; DateSharded records nest it under the
// session_meta payload.
func decodeCWD(line []byte, kind layout.Kind) string {
	if kind == layout.DateSharded {
		var e struct {
			Payload struct {
				CWD string `json:"cwd"`
			} `json:"payload"`
		}
		if json.Unmarshal(line, &e) != nil {
			return ""
		}
		return e.Payload.CWD
	}

	var e struct {
		CWD string `json:"cwd"`
	}
	if json.Unmarshal(line, &e) != nil {
		return ""
	}
	return e.CWD
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
