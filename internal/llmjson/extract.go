// Package llmjson extracts JSON payloads from free-form model output.
// Models are asked to return raw JSON, but in practice they wrap it in
// Markdown fences or surround it with prose, so every caller that
// parses model text goes through here.
package llmjson

import (
	"strings"
)

// ExtractObject returns the first JSON object found in raw text.
// It prefers a fenced ```json code block; failing that it scans for the
// first balanced brace-delimited object. The boolean reports whether
// anything was found.
func ExtractObject(raw string) (string, bool) {
	if s, ok := fromFence(raw, '{'); ok {
		return s, true
	}
	return balanced(raw, '{', '}')
}

// ExtractArray returns the first JSON array found in raw text, using
// the same fenced-block-first strategy as ExtractObject.
func ExtractArray(raw string) (string, bool) {
	if s, ok := fromFence(raw, '['); ok {
		return s, true
	}
	return balanced(raw, '[', ']')
}

// fromFence looks for a ``` or ```json fenced block whose content
// starts with the wanted opening delimiter.
func fromFence(raw string, open byte) (string, bool) {
	s := raw
	for {
		start := strings.Index(s, "```")
		if start == -1 {
			return "", false
		}
		s = s[start+3:]

		// Drop the fence's language tag line, if any.
		if nl := strings.IndexByte(s, '\n'); nl != -1 && !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}

		end := strings.Index(s, "```")
		if end == -1 {
			return "", false
		}

		body := strings.TrimSpace(s[:end])
		if len(body) > 0 && body[0] == open {
			return body, true
		}
		s = s[end+3:]
	}
}

// balanced scans raw for the first balanced open..close span. It is
// string-aware so braces inside JSON string values don't confuse the
// depth count.
func balanced(raw string, open, close byte) (string, bool) {
	start := strings.IndexByte(raw, open)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	return "", false
}
