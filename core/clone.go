package core

// Clone returns a deep copy of the detail. Cached details are shared and
// read-only; transforms that mutate must work on a clone.
func (d *SessionDetail) Clone() *SessionDetail {
	if d == nil {
		return nil
	}
	out := *d

	if d.ToolCounts != nil {
		out.ToolCounts = make(map[string]int, len(d.ToolCounts))
		for k, v := range d.ToolCounts {
			out.ToolCounts[k] = v
		}
	}
	if d.DiffStats != nil {
		ds := *d.DiffStats
		out.DiffStats = &ds
	}

	out.Messages = make([]Message, len(d.Messages))
	for i, m := range d.Messages {
		cm := m
		if m.Timestamp != nil {
			ts := *m.Timestamp
			cm.Timestamp = &ts
		}
		cm.Content = make([]ContentBlock, len(m.Content))
		for j, b := range m.Content {
			cb := b
			cb.Input = cloneValue(b.Input)
			cm.Content[j] = cb
		}
		out.Messages[i] = cm
	}
	return &out
}

// cloneValue deep-copies decoded JSON values. Scalars are immutable and
// return as-is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}
