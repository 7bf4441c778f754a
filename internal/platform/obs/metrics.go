package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// PlansTotal counts planning requests by outcome (solved, empty, cached, error).
	PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_plans_total", Help: "Route planning requests by outcome."},
		[]string{"outcome"},
	)
	// StageDuration records matrix build, solve and improve durations.
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "route_plan_stage_seconds", Help: "Route planning stage duration in seconds.", Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}},
		[]string{"stage"},
	)
	// GeocodeRequests counts outbound geocoding calls by provider and status.
	GeocodeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "geocode_requests_total", Help: "Outbound geocoding requests."},
		[]string{"provider", "status"},
	)
)

var regOnce sync.Once

// RegisterMetrics registers all collectors on Registry. Safe to call more than once.
func RegisterMetrics() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(PlansTotal)
		Registry.MustRegister(StageDuration)
		Registry.MustRegister(GeocodeRequests)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
