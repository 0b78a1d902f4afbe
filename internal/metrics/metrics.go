// Package metrics exposes catalog counters to Prometheus at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	productOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "product_operations_total",
		Help:      "Product operations by name and outcome.",
	}, []string{"operation", "outcome"})

	productsListed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "catalog",
		Name:      "products_listed",
		Help:      "Number of products returned by the most recent list call.",
	})
)

func RecordOperation(operation, outcome string) {
	productOperations.WithLabelValues(operation, outcome).Inc()
}

func SetProductsListed(n int) {
	productsListed.Set(float64(n))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
