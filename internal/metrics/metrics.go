package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var filesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "files_processed_total",
	Help: "Uploaded files processed, labelled by format and outcome",
}, []string{"format", "outcome"})

var generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "generations_total",
	Help: "Document generations, labelled by outcome",
}, []string{"outcome"})

var llmFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "llm_failures_total",
	Help: "LLM call failures, labelled by error type",
}, []string{"error_type"})

var exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exports_total",
	Help: "Document exports, labelled by format",
}, []string{"format"})

var generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "generation_duration_seconds",
	Help:    "Total time spent in one generation request.",
	Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 90},
}, []string{"outcome"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 60},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) CaptureWriteHeaderMetrics(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CountFileProcessed(format, outcome string) {
	filesProcessedTotal.WithLabelValues(format, outcome).Inc()
}

func CountGeneration(outcome string) {
	generationsTotal.WithLabelValues(outcome).Inc()
}

func CountLLMFailure(errorType string) {
	llmFailuresTotal.WithLabelValues(errorType).Inc()
}

func CountExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}

func CaptureGenerationMetrics(outcome string, timeElapsed time.Duration) {
	generationDuration.WithLabelValues(outcome).Observe(timeElapsed.Seconds())
}

func CaptureDependencyLatency(service string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(service).Observe(timeElapsed.Seconds())
}
