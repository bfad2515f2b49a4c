package extract

import (
	"propostas/internal/model"
	"propostas/internal/payload"
)

// Reason is the ineligibility code/description pair of a proposal.
// Either half may be nil.
type Reason struct {
	Code        any
	Description any
}

// Eligibility decodes an eligibility cell with the payload parse policy.
// ok is true only when the cell held an object; that object counts as
// "checked" even if both halves are missing.
func Eligibility(v any) (Reason, bool) {
	obj, isObj := payload.Parse(v).(map[string]any)
	if !isObj {
		return Reason{}, false
	}
	return Reason{
		Code:        obj[fieldCode],
		Description: obj[fieldDescription],
	}, true
}

// Apply writes both eligibility keys onto row, nil halves included.
func (r Reason) Apply(row *model.Row) {
	row.Set(KeyEligibilityCode, r.Code)
	row.Set(KeyEligibilityDescription, r.Description)
}
