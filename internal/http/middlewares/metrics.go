package middlewares

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.2,
	0.4, 0.8, 1, 2, 5}

// Metrics registers the HTTP metrics and returns the middleware updating
// them. Errors returned by handlers are passed to the echo error handler
// here so the recorded status is the one sent to the client.
func Metrics(registry *prometheus.Registry, logger *slog.Logger) (echo.MiddlewareFunc, error) {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_responses_total",
			Help: "Count the number of HTTP responses.",
		},
		[]string{"method", "status", "path"})
	if err := registry.Register(counter); err != nil {
		return nil, err
	}
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_duration_second",
			Help:    "Time to execute http requests",
			Buckets: durationBuckets,
		},
		[]string{"method", "path"})
	if err := registry.Register(histogram); err != nil {
		return nil, err
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			start := time.Now()
			err := next(ec)
			if err != nil {
				ec.Error(err)
			}
			duration := time.Since(start)
			method := ec.Request().Method
			path := ec.Path()
			response := ec.Response()
			if response == nil {
				logger.Error(fmt.Sprintf("Response in metrics middleware is nil for %s %s", method, path))
				return nil
			}
			status := strconv.Itoa(response.Status)
			if response.Status == 404 {
				path = "?"
			}
			histogram.With(prometheus.Labels{"method": method, "path": path}).Observe(duration.Seconds())
			counter.With(prometheus.Labels{"method": method, "status": status, "path": path}).Inc()
			return nil
		}
	}, nil
}
