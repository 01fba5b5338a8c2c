package redact

// Tool inputs come out of the parser as untyped json.Unmarshal values, so
// reaching every string means walking map[string]any / []any trees. The
// depth budget caps recursion on pathological nesting; anything deeper is
// left as-is.
const maxWalkDepth = 16

// walkAny returns v with fn applied to every string leaf.
func walkAny(v any, fn func(string) string) any {
	return walk(v, fn, maxWalkDepth)
}

func walk(v any, fn func(string) string, budget int) any {
	if budget < 0 {
		return v
	}
	switch val := v.(type) {
	case string:
		return fn(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = walk(child, fn, budget-1)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = walk(child, fn, budget-1)
		}
		return out
	default:
		return v
	}
}
