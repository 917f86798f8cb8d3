package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Content source metrics
var (
	CategoryFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "category_fetches_total",
			Help: "Total number of category fetches by outcome (success, fallback, error, canceled).",
		},
		[]string{"category", "status"},
	)

	AuthFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of requests rejected with HTTP 401.",
		},
	)
)

// Pipeline metrics
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of release pipeline runs.",
		},
		[]string{"trigger", "status"},
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "Duration of release pipeline runs.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"trigger"},
	)
)

// Carousel metrics
var (
	CarouselSlideChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carousel_slide_changes_total",
			Help: "Total number of carousel slide changes by reason (autoplay, manual, reset).",
		},
		[]string{"reason"},
	)

	CarouselContentSwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carousel_content_swaps_total",
			Help: "Total number of refreshed content sets applied to the carousel.",
		},
		[]string{"significant"},
	)
)

func init() {
	prometheus.MustRegister(
		CategoryFetchesTotal,
		AuthFailuresTotal,
		PipelineRunsTotal,
		PipelineDuration,
		CarouselSlideChangesTotal,
		CarouselContentSwapsTotal,
	)
}
