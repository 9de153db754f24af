// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clipstream"

var (
	// IngestStagesTotal tracks pipeline stage outcomes.
	// Labels:
	//   - stage: stage, probe, faststart, upload, finalize
	//   - status: success, error
	IngestStagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_stages_total",
			Help:      "Total number of ingestion pipeline stage executions",
		},
		[]string{"stage", "status"},
	)

	// IngestDurationSeconds observes end-to-end pipeline duration.
	IngestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "End-to-end duration of ingestion pipeline runs",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// IngestedBytesTotal counts bytes durably stored by the pipeline.
	IngestedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_bytes_total",
			Help:      "Total bytes uploaded to the object store by the pipeline",
		},
	)

	// CacheOperationsTotal tracks video cache operations.
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior on reads.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// PosterTasksTotal tracks poster extraction outcomes in the worker.
	// Labels:
	//   - status: success, error, dropped
	PosterTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poster_tasks_total",
			Help:      "Total number of poster extraction tasks processed",
		},
		[]string{"status"},
	)
)

// Pipeline stage name constants.
const (
	StageStage     = "stage"
	StageProbe     = "probe"
	StageFastStart = "faststart"
	StageUpload    = "upload"
	StageFinalize  = "finalize"
)

// Stage and cache status constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusDropped = "dropped"

	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
