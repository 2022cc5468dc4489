package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "timeline",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "The number of HTTP requests served, by route and status.",
	}, []string{"route", "status"})

// InitMetrics registers all metrics in the api package
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(requestsTotal)
}

// MetricsHandler serves the metrics gathered by g.
func MetricsHandler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

func countRequests(c fiber.Ctx) error {
	err := c.Next()
	requestsTotal.WithLabelValues(c.Route().Path, strconv.Itoa(c.Response().StatusCode())).Inc()
	return err
}
