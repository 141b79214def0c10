package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

var (
	DatabaseQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total database queries",
		},
	)

	EntityWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_writes_total",
			Help: "Saved, updated and deleted records by entity kind",
		},
		[]string{"entity", "op"},
	)

	FormRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_rejections_total",
			Help: "Forms rejected by validation before reaching the store",
		},
		[]string{"form"},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DatabaseQueries)
	prometheus.MustRegister(EntityWrites)
	prometheus.MustRegister(FormRejections)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
