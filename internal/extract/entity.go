package extract

import (
	"propostas/internal/model"
	"propostas/internal/payload"
)

// Entities derives one flat record per entity object found in a parsed
// payload. A nil payload yields nothing; an object yields one record; an array
// yields one record per object element, in order, skipping anything else.
func Entities(parsed any) []*model.Row {
	switch p := parsed.(type) {
	case map[string]any:
		return []*model.Row{Entity(p)}
	case []any:
		out := make([]*model.Row, 0, len(p))
		for _, item := range p {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, Entity(obj))
			}
		}
		return out
	default:
		return nil
	}
}

// FromCell decodes a raw payload cell into entity records and reports how the
// cell decoded.
func FromCell(v any) ([]*model.Row, payload.Outcome) {
	parsed, outcome := payload.ParseOutcome(v)
	return Entities(parsed), outcome
}

// Entity maps one payload object onto canonical keys. Every field is optional;
// absent fields are simply not set.
func Entity(obj map[string]any) *model.Row {
	rec := model.NewRow(8)

	// Key order here is the first-seen order downstream.
	if v, ok := obj[fieldName]; ok {
		rec.Set(KeyName, v)
	}
	if v, ok := obj[fieldIdentifier]; ok {
		if v != nil {
			v = model.Text(v)
		}
		rec.Set(KeyIdentifier, v)
	}
	if display, ok := codeDisplay(obj[fieldOccupation]); ok {
		rec.Set(KeyOccupation, display)
	}
	if display, ok := codeDisplay(obj[fieldIndustry]); ok {
		rec.Set(KeyIndustry, display)
	}
	for _, p := range passThrough {
		if v, ok := obj[p.field]; ok {
			rec.Set(p.key, v)
		}
	}
	return rec
}

// codeDisplay collapses a {codigo, descricao} object into "codigo - descricao".
// An empty code yields "" rather than a dangling " - descricao". ok is false
// when v is not an object.
func codeDisplay(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	code := model.Text(obj[fieldCode])
	if code == "" {
		return "", true
	}
	return code + " - " + model.Text(obj[fieldDescription]), true
}
