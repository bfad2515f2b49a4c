package pipeline

import (
	"iter"

	"propostas/internal/extract"
	"propostas/internal/model"
	"propostas/internal/payload"
)

// Merge builds one output row: the source row's scalar columns, then the
// entity record's fields, then both eligibility keys when a reason was parsed.
//
// The payload and eligibility columns are never copied, nor is any nil value
// or any other column whose text looks like JSON. rec and reason may be nil.
func Merge(src, rec *model.Row, reason *extract.Reason, cols Columns) *model.Row {
	out := model.NewRow(src.Len() + rec.Len() + 2)

	for _, col := range src.Keys() {
		if cols.skip(col) {
			continue
		}
		v, _ := src.Get(col)
		if v == nil || payload.LooksLikeJSON(v) {
			continue
		}
		out.Set(col, v)
	}

	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		out.Set(key, v)
	}

	if reason != nil {
		reason.Apply(out)
	}
	return out
}

// Expansion is one source row with its payload and eligibility cells decoded.
type Expansion struct {
	Source  *model.Row
	Columns Columns
	Records []*model.Row
	Reason  *extract.Reason
	Outcome payload.Outcome
}

// Decode reads the payload and eligibility cells of src. Without a payload
// column the outcome is Absent and there are no records.
func Decode(src *model.Row, cols Columns) Expansion {
	exp := Expansion{
		Source:  src,
		Columns: cols,
		Reason:  reasonOf(src, cols),
		Outcome: payload.Absent,
	}
	if cols.Payload != "" {
		v, _ := src.Get(cols.Payload)
		exp.Records, exp.Outcome = extract.FromCell(v)
	}
	return exp
}

// Rows fans the expansion out into output rows. The sequence builds fresh
// rows on each iteration, so it can be ranged over again.
func (e Expansion) Rows() iter.Seq[*model.Row] {
	return FanOut(e.Source, e.Records, e.Reason, e.Columns)
}

// Expand fans one source row out into its output rows: one per entity record,
// or a single scalar-only row when the payload yields none. Rows that end up
// with no columns at all are not produced.
func Expand(src *model.Row, cols Columns) iter.Seq[*model.Row] {
	return Decode(src, cols).Rows()
}

// FanOut is Expand with the entity records and eligibility reason already
// extracted.
func FanOut(src *model.Row, records []*model.Row, reason *extract.Reason, cols Columns) iter.Seq[*model.Row] {
	return func(yield func(*model.Row) bool) {
		if len(records) == 0 {
			if out := Merge(src, nil, reason, cols); out.Len() > 0 {
				yield(out)
			}
			return
		}
		for _, rec := range records {
			if !yield(Merge(src, rec, reason, cols)) {
				return
			}
		}
	}
}

func reasonOf(src *model.Row, cols Columns) *extract.Reason {
	if cols.Eligibility == "" {
		return nil
	}
	v, _ := src.Get(cols.Eligibility)
	r, ok := extract.Eligibility(v)
	if !ok {
		return nil
	}
	return &r
}
