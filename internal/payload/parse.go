package payload

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Outcome describes how a payload was obtained.
type Outcome int

const (
	// Absent means the value was not text or structured data, or was blank.
	Absent Outcome = iota
	// Structured means the value was already decoded and passed through.
	Structured
	// Direct means the text parsed as-is.
	Direct
	// Repaired means the text parsed only after Repair.
	Repaired
	// Failed means the text did not parse even after Repair.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Structured:
		return "structured"
	case Direct:
		return "direct"
	case Repaired:
		return "repaired"
	case Failed:
		return "failed"
	default:
		return "absent"
	}
}

// Parse turns a cell value into a payload: map[string]any, []any, or nil.
// It never panics and never returns an error; every failure resolves to nil.
func Parse(v any) any {
	out, _ := ParseOutcome(v)
	return out
}

// ParseOutcome is Parse plus how the result was reached.
//
// Structured values pass through. Text is decoded as-is, then once more after
// Repair. Numbers inside payloads decode as json.Number. Text that decodes to
// a bare scalar is not a payload and yields nil.
func ParseOutcome(v any) (any, Outcome) {
	switch val := v.(type) {
	case map[string]any:
		return val, Structured
	case []any:
		return val, Structured
	case string:
		return parseText(val)
	default:
		return nil, Absent
	}
}

func parseText(text string) (any, Outcome) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Absent
	}
	if out, err := decode(text); err == nil {
		return container(out), Direct
	}
	if out, err := decode(Repair(text)); err == nil {
		return container(out), Repaired
	}
	return nil, Failed
}

var errTrailingData = errors.New("trailing data after JSON value")

func decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return out, nil
}

func container(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return v
	default:
		return nil
	}
}

// LooksLikeJSON reports whether v is text that opens like a JSON object or
// array once surrounding whitespace is trimmed.
func LooksLikeJSON(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
