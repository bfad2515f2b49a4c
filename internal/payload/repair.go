package payload

import (
	"regexp"
	"strings"
)

// Repair rules. Each rewrites a missing scalar value into an explicit null.
var (
	missingBeforeComma   = regexp.MustCompile(`:\s*,`)
	missingBeforeBrace   = regexp.MustCompile(`:\s*}`)
	missingBeforeBracket = regexp.MustCompile(`:\s*]`)
	emptyTrailingSlot    = regexp.MustCompile(`,\s*]`)
)

// Repair rewrites the known malformation of exported payloads, a field whose
// value was dropped ("emprestimosLegados":,), into parseable JSON text.
//
// Rules, in order: `:,` -> `:null,`, `:}` -> `:null}`, `:]` -> `:null]`,
// `,]` -> `,null]` (whitespace allowed before the closing token). NUL
// characters are stripped first so a stray NUL cannot hide a match until a
// second pass. Substitutions only touch text outside string literals.
//
// Repair never fails and Repair(Repair(s)) == Repair(s).
func Repair(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")

	var b strings.Builder
	b.Grow(len(text) + 16)

	for _, seg := range splitLiterals(text) {
		if seg.literal {
			b.WriteString(seg.text)
			continue
		}
		b.WriteString(repairBare(seg.text))
	}
	return b.String()
}

func repairBare(s string) string {
	s = missingBeforeComma.ReplaceAllLiteralString(s, ":null,")
	s = missingBeforeBrace.ReplaceAllLiteralString(s, ":null}")
	s = missingBeforeBracket.ReplaceAllLiteralString(s, ":null]")
	s = emptyTrailingSlot.ReplaceAllLiteralString(s, ",null]")
	return s
}

type segment struct {
	text    string
	literal bool
}

// splitLiterals cuts text into alternating bare and string-literal segments.
// An unterminated literal runs to the end of the text.
func splitLiterals(s string) []segment {
	var out []segment
	start := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				out = append(out, segment{text: s[start : i+1], literal: true})
				start = i + 1
				inString = false
			}
			continue
		}
		if c == '"' {
			if i > start {
				out = append(out, segment{text: s[start:i]})
			}
			start = i
			inString = true
		}
	}
	if start < len(s) {
		out = append(out, segment{text: s[start:], literal: inString})
	}
	return out
}
