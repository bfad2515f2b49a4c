package pipeline

import (
	"encoding/json"
	"errors"

	"propostas/internal/model"
)

// ErrNoRows signals that no output rows were produced; callers fall back to
// the source table.
var ErrNoRows = errors.New("no rows extracted")

// AssembleOptions controls deduplication and column order.
type AssembleOptions struct {
	DedupeKey string
	Priority  []string
}

// Assemble deduplicates rows and fixes the column order: priority columns that
// occur in the data first, then every other column in first-seen order.
func Assemble(rows []*model.Row, opts AssembleOptions) (*model.Table, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	kept := Dedupe(rows, opts.DedupeKey)
	table := model.NewTable(OrderColumns(kept, opts.Priority))
	for _, r := range kept {
		table.Append(r)
	}
	return table, nil
}

// Dedupe keeps the first row for each value of key. Values match when they
// are of the same kind (text, number, boolean, other) and render the same, so
// "1" and 1 are distinct while json.Number("1") and 1 are not. Rows without a
// value for key (missing, nil or empty) are always kept.
func Dedupe(rows []*model.Row, key string) []*model.Row {
	if key == "" {
		return rows
	}

	seen := make(map[string]struct{}, len(rows))
	kept := make([]*model.Row, 0, len(rows))
	for _, r := range rows {
		v, _ := r.Get(key)
		text := model.Text(v)
		if v == nil || text == "" {
			kept = append(kept, r)
			continue
		}
		k := dedupeKind(v) + text
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	return kept
}

func dedupeKind(v any) string {
	switch v.(type) {
	case string:
		return "s:"
	case json.Number, float64, float32, int, int64, int32:
		return "n:"
	case bool:
		return "b:"
	default:
		return "o:"
	}
}

// OrderColumns returns the union of row keys, priority columns first.
func OrderColumns(rows []*model.Row, priority []string) []string {
	union := model.NewOrderedSet()
	for _, r := range rows {
		for _, k := range r.Keys() {
			union.Add(k)
		}
	}

	ordered := model.NewOrderedSet()
	for _, p := range priority {
		if union.Contains(p) {
			ordered.Add(p)
		}
	}
	for _, c := range union.Items() {
		ordered.Add(c)
	}
	return ordered.Items()
}
