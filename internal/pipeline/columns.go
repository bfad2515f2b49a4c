package pipeline

import (
	"propostas/internal/config"
	"propostas/internal/model"
)

// Columns names the payload and eligibility columns of a row. Empty means the
// row has none.
type Columns struct {
	Payload     string
	Eligibility string
}

// ResolveColumns picks, for each logical column, the first candidate header
// present in row. Matching is exact and case-sensitive.
func ResolveColumns(row *model.Row, cfg config.PipelineConfig) Columns {
	return Columns{
		Payload:     firstPresent(row, cfg.PayloadColumns),
		Eligibility: firstPresent(row, cfg.EligibilityColumns),
	}
}

// ResolveHeader is ResolveColumns for a bare header line.
func ResolveHeader(header []string, cfg config.PipelineConfig) Columns {
	row := model.NewRow(len(header))
	for _, h := range header {
		row.Set(h, nil)
	}
	return ResolveColumns(row, cfg)
}

func firstPresent(row *model.Row, candidates []string) string {
	for _, c := range candidates {
		if row.Has(c) {
			return c
		}
	}
	return ""
}

// skip reports whether col is one of the decoded columns.
func (c Columns) skip(col string) bool {
	return (c.Payload != "" && col == c.Payload) ||
		(c.Eligibility != "" && col == c.Eligibility)
}
