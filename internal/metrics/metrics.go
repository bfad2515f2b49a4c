package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propostas_runs_total",
			Help: "Processing runs by source and final status",
		},
		[]string{"source", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "propostas_run_duration_seconds",
			Help:    "Duration of successful runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propostas_rows_total",
			Help: "Rows seen per stage: source, output, duplicate",
		},
		[]string{"stage"},
	)

	PayloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propostas_payloads_total",
			Help: "Payload cells by decode outcome",
		},
		[]string{"outcome"},
	)

	FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "propostas_fallbacks_total",
			Help: "Runs that produced no records and copied the input table",
		},
	)
)
