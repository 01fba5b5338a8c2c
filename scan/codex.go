package scan

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/sonnes/lekha/core"
)

// Raw deserialization types mirroring the DateSharded (codex) JSONL shape.
// Every record is {"timestamp": ..., "type": ..., "payload": {...}} where
// the payload shape depends on the type.

type codexEntry struct {
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Payload   codexPayload `json:"payload"`
}

type codexPayload struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Role    string         `json:"role"`
	CWD     string         `json:"cwd"`
	Message string         `json:"message"`
	Content []codexContent `json:"content"`
}

type codexContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// codexSummaryStep folds one decoded record into the summary counters.
// Conversation items arrive as response_item records; the event stream
// mirrors them as event_msg records, and only event_msg user_message marks
// a real human turn.
func codexSummaryStep(line []byte, s *summaryState) {
	var e codexEntry
	if err := json.Unmarshal(line, &e); err != nil {
		s.malformed++
		return
	}
	s.observeTimestamp(e.Timestamp)

	switch e.Type {
	case "session_meta":
		if s.cwd == "" && e.Payload.CWD != "" {
			s.cwd = e.Payload.CWD
		}
	case "response_item":
		if e.Payload.Type == "message" {
			s.msgCount++
		}
	case "event_msg":
		switch e.Payload.Type {
		case "user_message":
			s.msgCount++
			s.realTurns++
		case "agent_message":
			s.msgCount++
		}
	}
}

// codexMessage converts a response_item message record to a core message.
func (e codexEntry) message() (core.Message, bool) {
	if e.Type != "response_item" || e.Payload.Type != "message" {
		return core.Message{}, false
	}

	role := core.RoleAssistant
	switch e.Payload.Role {
	case "user":
		role = core.RoleUser
	case "system":
		role = core.RoleSystem
	}

	var blocks []core.ContentBlock
	for _, c := range e.Payload.Content {
		if c.Text == "" {
			continue
		}
		blocks = append(blocks, core.ContentBlock{Type: core.BlockText, Text: c.Text})
	}
	if len(blocks) == 0 {
		return core.Message{}, false
	}

	m := core.Message{Role: role, Content: blocks}
	if ts := parseTime(e.Timestamp); !ts.IsZero() {
		m.Timestamp = &ts
	}
	return m, true
}

// parseCodex decodes every line of a DateSharded session into a detail.
// Message bodies come from response_item records; event_msg records are
// counted for the real-turn metric but not duplicated into the sequence.
func parseCodex(r io.Reader) (*core.SessionDetail, error) {
	d := &core.SessionDetail{}
	var first, last time.Time

	scanner := newLineScanner(r)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e codexEntry
		if err := json.Unmarshal(line, &e); err != nil {
			d.MalformedLines++
			continue
		}
		if ts := parseTime(e.Timestamp); !ts.IsZero() {
			if first.IsZero() {
				first = ts
			}
			last = ts
		}

		switch e.Type {
		case "session_meta":
			if d.CWD == "" && e.Payload.CWD != "" {
				d.CWD = e.Payload.CWD
			}
		case "response_item":
			if m, ok := e.message(); ok {
				d.Messages = append(d.Messages, m)
			}
		case "event_msg":
			if e.Payload.Type == "user_message" {
				d.RealTurns++
			}
		}
	}

	d.FirstAt = first
	d.LastAt = last
	return d, scanner.Err()
}
