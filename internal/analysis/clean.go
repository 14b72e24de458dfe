package analysis

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"
)

const fence = "```"

// StripCodeFence removes one markdown fence from a model reply. The reply is
// trimmed first; if it then opens with a fence the first line is dropped
// whatever its language tag, and the last line is dropped when it is a fence.
// Anything else comes back trimmed but otherwise unchanged.
//
// Whitespace and line breaks follow Unicode, so \v, \f, \x1c-\x1e, NEL and
// the line/paragraph separators all end a line.
func StripCodeFence(reply string) string {
	reply = strings.TrimFunc(reply, isSpace)
	if !strings.HasPrefix(reply, fence) {
		return reply
	}

	lines := splitLines(reply)[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(lines[n-1], fence) {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}

// splitLines splits s at every line break, treating \r\n as one break. A
// trailing break does not produce an empty final line.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// isSpace is unicode.IsSpace plus the ASCII separators \x1c-\x1f.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// Interpret decides whether cleaned text is a JSON document. JSON is kept as
// raw bytes so numbers and key order survive re-encoding.
func Interpret(cleaned string) (json.RawMessage, bool) {
	raw := []byte(cleaned)
	if !json.Valid(raw) {
		return nil, false
	}
	return json.RawMessage(raw), true
}
