package pipeline

import (
	"errors"

	"go.uber.org/zap"

	"propostas/internal/config"
	"propostas/internal/model"
	"propostas/internal/payload"
)

// PayloadStats counts how payload cells were decoded.
type PayloadStats struct {
	Direct   int `json:"direct"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
	Absent   int `json:"absent"`
}

func (s *PayloadStats) count(o payload.Outcome) {
	switch o {
	case payload.Direct, payload.Structured:
		s.Direct++
	case payload.Repaired:
		s.Repaired++
	case payload.Failed:
		s.Failed++
	default:
		s.Absent++
	}
}

// Result is the outcome of one Process call.
type Result struct {
	Table *model.Table
	// Fallback is set when nothing was extracted and Table is the source.
	Fallback          bool
	SourceRows        int
	ExpandedRows      int
	EntityRecords     int
	DuplicatesDropped int
	Payloads          PayloadStats
}

// Processor runs the extraction pipeline over whole tables.
type Processor struct {
	cfg config.PipelineConfig
	log *zap.Logger
}

// NewProcessor creates a processor. A nil logger discards output.
func NewProcessor(cfg config.PipelineConfig, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{cfg: cfg, log: log}
}

// Process expands every source row, then assembles the output table. When no
// row produced output the source table is returned unchanged.
func (p *Processor) Process(src *model.Table) *Result {
	res := &Result{SourceRows: src.Len()}

	cols := ResolveHeader(src.Columns, p.cfg)
	p.log.Debug("columns resolved", zap.String("payload", cols.Payload), zap.String("eligibility", cols.Eligibility))

	var rows []*model.Row
	for i, row := range src.Rows {
		exp := Decode(row, cols)
		res.Payloads.count(exp.Outcome)
		res.EntityRecords += len(exp.Records)
		if exp.Outcome == payload.Failed {
			p.log.Debug("payload unparseable", zap.Int("row", i+2), zap.String("column", cols.Payload))
		}

		for out := range exp.Rows() {
			rows = append(rows, out)
		}
	}
	res.ExpandedRows = len(rows)

	table, err := Assemble(rows, AssembleOptions{
		DedupeKey: p.cfg.DedupeKey,
		Priority:  p.cfg.PriorityColumns,
	})
	if errors.Is(err, ErrNoRows) {
		p.log.Info("no rows extracted, keeping source table", zap.Int("source_rows", res.SourceRows))
		res.Table = src
		res.Fallback = true
		return res
	}

	res.Table = table
	res.DuplicatesDropped = len(rows) - table.Len()

	p.log.Info("table assembled",
		zap.Int("source_rows", res.SourceRows),
		zap.Int("entity_records", res.EntityRecords),
		zap.Int("output_rows", table.Len()),
		zap.Int("duplicates_dropped", res.DuplicatesDropped),
		zap.Int("payloads_repaired", res.Payloads.Repaired),
		zap.Int("payloads_failed", res.Payloads.Failed),
	)
	return res
}
