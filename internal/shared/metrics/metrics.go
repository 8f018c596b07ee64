package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GenerationsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "generations_started_total",
			Help: "Total number of question generations started",
		},
	)

	GenerationsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "generations_completed_total",
			Help: "Total number of question generations completed",
		},
	)

	GenerationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_failed_total",
			Help: "Total number of question generations failed",
		},
		[]string{"reason"},
	)

	GenerationsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "generations_cancelled_total",
			Help: "Total number of question generations cancelled by the client",
		},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Duration of the full generation pipeline in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
