package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propostas/internal/metrics"
	"propostas/internal/pipeline"
	"propostas/internal/store"
	"propostas/internal/tableio"
)

// Coordinator runs one input file through read, extraction and write, and
// records the run in the history store.
type Coordinator struct {
	processor *pipeline.Processor
	store     *store.Store
	tableOpts tableio.Options
	log       *zap.Logger
}

// NewCoordinator creates a coordinator. st may be nil to skip run history.
func NewCoordinator(processor *pipeline.Processor, st *store.Store, tableOpts tableio.Options, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		processor: processor,
		store:     st,
		tableOpts: tableOpts,
		log:       log,
	}
}

// ImportOptions describes one run.
type ImportOptions struct {
	InputPath  string
	OutputPath string
	// Source tags the run in history ("cli", "http").
	Source string
	// DisplayName overrides the file name recorded in history.
	DisplayName string
}

// ProgressEvent is emitted while a run advances.
type ProgressEvent struct {
	Type      string      `json:"type"` // start/info/warning/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Report summarises a finished run.
type Report struct {
	RunID             string                `json:"runId"`
	Filename          string                `json:"filename"`
	OutputPath        string                `json:"outputPath"`
	Encoding          string                `json:"encoding"`
	Sheet             string                `json:"sheet,omitempty"`
	Warnings          []tableio.Warning     `json:"warnings,omitempty"`
	SourceRows        int                   `json:"sourceRows"`
	EntityRecords     int                   `json:"entityRecords"`
	OutputRows        int                   `json:"outputRows"`
	OutputColumns     int                   `json:"outputColumns"`
	DuplicatesDropped int                   `json:"duplicatesDropped"`
	Payloads          pipeline.PayloadStats `json:"payloads"`
	Fallback          bool                  `json:"fallback"`
	Duration          time.Duration         `json:"duration"`
}

// Import runs asynchronously and returns the progress channel. The last event
// is "done" carrying the *Report, or "error".
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 16)

	go func() {
		defer close(progressChan)
		report, err := c.run(opts, progressChan)
		if err != nil {
			c.sendProgress(progressChan, "error", err.Error(), nil)
			return
		}
		c.sendProgress(progressChan, "done", "processing finished", report)
	}()

	return progressChan
}

// Run processes synchronously.
func (c *Coordinator) Run(opts ImportOptions) (*Report, error) {
	return c.run(opts, nil)
}

func (c *Coordinator) run(opts ImportOptions, progressChan chan ProgressEvent) (*Report, error) {
	startTime := time.Now()
	name := opts.DisplayName
	if name == "" {
		name = filepath.Base(opts.InputPath)
	}
	source := opts.Source
	if source == "" {
		source = "cli"
	}

	report := &Report{
		RunID:      uuid.New().String(),
		Filename:   name,
		OutputPath: opts.OutputPath,
	}
	log := c.log.With(zap.String("run_id", report.RunID), zap.String("file", name))

	c.recordStart(log, report.RunID, source, name, startTime)
	c.sendProgress(progressChan, "start", fmt.Sprintf("reading %s", name), map[string]string{"filename": name})

	src, err := tableio.ReadFile(opts.InputPath, c.tableOpts)
	if err != nil {
		err = fmt.Errorf("read %s: %w", name, err)
		c.recordFailure(log, report.RunID, err)
		metrics.RunsTotal.WithLabelValues(source, store.RunFailed).Inc()
		return nil, err
	}
	report.Encoding = src.Encoding
	report.Sheet = src.Sheet
	report.Warnings = src.Warnings
	for _, w := range src.Warnings {
		log.Warn("input row skipped", zap.Int("row", w.Row), zap.String("reason", w.Message))
		c.sendProgress(progressChan, "warning", fmt.Sprintf("row %d: %s", w.Row, w.Message), w)
	}
	c.sendProgress(progressChan, "info", fmt.Sprintf("%d rows, %d columns", src.Table.Len(), len(src.Table.Columns)), nil)

	res := c.processor.Process(src.Table)
	report.SourceRows = res.SourceRows
	report.EntityRecords = res.EntityRecords
	report.OutputRows = res.Table.Len()
	report.OutputColumns = len(res.Table.Columns)
	report.DuplicatesDropped = res.DuplicatesDropped
	report.Payloads = res.Payloads
	report.Fallback = res.Fallback
	if res.Fallback {
		c.sendProgress(progressChan, "warning", "no records extracted, writing a copy of the original table", nil)
	}

	if err := tableio.WriteFile(opts.OutputPath, res.Table, c.tableOpts); err != nil {
		err = fmt.Errorf("write %s: %w", filepath.Base(opts.OutputPath), err)
		c.recordFailure(log, report.RunID, err)
		metrics.RunsTotal.WithLabelValues(source, store.RunFailed).Inc()
		return nil, err
	}

	report.Duration = time.Since(startTime)
	c.recordDone(log, report)
	observe(source, report)
	log.Info("run finished",
		zap.Int("output_rows", report.OutputRows),
		zap.Bool("fallback", report.Fallback),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (c *Coordinator) recordStart(log *zap.Logger, id, source, name string, at time.Time) {
	if c.store == nil {
		return
	}
	if err := c.store.CreateRun(id, source, name, at); err != nil {
		log.Warn("run history unavailable", zap.Error(err))
	}
}

func (c *Coordinator) recordFailure(log *zap.Logger, id string, cause error) {
	log.Error("run failed", zap.Error(cause))
	if c.store == nil {
		return
	}
	if err := c.store.FailRun(id, cause); err != nil {
		log.Warn("run history not updated", zap.Error(err))
	}
}

func (c *Coordinator) recordDone(log *zap.Logger, r *Report) {
	if c.store == nil {
		return
	}
	err := c.store.CompleteRun(r.RunID, store.RunStats{
		OutputPath:        r.OutputPath,
		SourceRows:        r.SourceRows,
		EntityRecords:     r.EntityRecords,
		OutputRows:        r.OutputRows,
		DuplicatesDropped: r.DuplicatesDropped,
		PayloadsRepaired:  r.Payloads.Repaired,
		PayloadsFailed:    r.Payloads.Failed,
		Fallback:          r.Fallback,
	})
	if err != nil {
		log.Warn("run history not updated", zap.Error(err))
	}
}

func observe(source string, r *Report) {
	metrics.RunsTotal.WithLabelValues(source, store.RunDone).Inc()
	metrics.RunDuration.WithLabelValues(source).Observe(r.Duration.Seconds())
	metrics.RowsTotal.WithLabelValues("source").Add(float64(r.SourceRows))
	metrics.RowsTotal.WithLabelValues("output").Add(float64(r.OutputRows))
	metrics.RowsTotal.WithLabelValues("duplicate").Add(float64(r.DuplicatesDropped))
	metrics.PayloadsTotal.WithLabelValues("direct").Add(float64(r.Payloads.Direct))
	metrics.PayloadsTotal.WithLabelValues("repaired").Add(float64(r.Payloads.Repaired))
	metrics.PayloadsTotal.WithLabelValues("failed").Add(float64(r.Payloads.Failed))
	metrics.PayloadsTotal.WithLabelValues("absent").Add(float64(r.Payloads.Absent))
	if r.Fallback {
		metrics.FallbacksTotal.Inc()
	}
}

// sendProgress is a no-op for synchronous runs.
func (c *Coordinator) sendProgress(progressChan chan ProgressEvent, typ, msg string, data interface{}) {
	if progressChan == nil {
		return
	}
	progressChan <- ProgressEvent{
		Type:      typ,
		Message:   msg,
		Data:      data,
		Timestamp: time.Now(),
	}
}
