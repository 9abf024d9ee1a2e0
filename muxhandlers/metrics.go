package muxhandlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitalvas/kestrel/mux"
)

// ErrNilRegisterer is returned when MetricsConfig.Registerer is nil.
var ErrNilRegisterer = errors.New("metrics: registerer is required")

// unmatchedRoute labels requests that matched no route, keeping label
// cardinality bounded by the route table.
const unmatchedRoute = "unmatched"

// DefaultDurationBuckets are the histogram buckets, in seconds, used when
// MetricsConfig.Buckets is empty.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0}

// MetricsConfig configures the Metrics wrapper behaviour.
type MetricsConfig struct {
	// Registerer receives the collectors. Use prometheus.DefaultRegisterer
	// or a dedicated prometheus.Registry.
	Registerer prometheus.Registerer

	// Namespace prefixes the metric names. Defaults to "kestrel".
	Namespace string

	// Buckets overrides DefaultDurationBuckets.
	Buckets []float64
}

// MetricsWrapper returns a wrapper that counts requests and observes their
// duration, labelled by method, route pattern and status code. Register it
// with Wrap so unmatched requests are counted too.
//
// Exposed metrics:
//   - <namespace>_http_requests_total{method,route,status}
//   - <namespace>_http_request_duration_seconds{method,route,status}
func MetricsWrapper(cfg MetricsConfig) (mux.WrapperFunc, error) {
	if cfg.Registerer == nil {
		return nil, ErrNilRegisterer
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "kestrel"
	}

	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = DefaultDurationBuckets
	}

	labels := []string{"method", "route", "status"}

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		labels,
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   buckets,
		},
		labels,
	)

	if err := cfg.Registerer.Register(requests); err != nil {
		return nil, err
	}
	if err := cfg.Registerer.Register(duration); err != nil {
		cfg.Registerer.Unregister(requests)
		return nil, err
	}

	return func(req *mux.Request, next mux.NextFunc) (mux.Response, error) {
		start := time.Now()

		resp, err := next()

		route := unmatchedRoute
		if r := req.Route(); r != nil {
			route = r.Pattern()
		}

		status := resp.Status()
		if err != nil {
			status = mux.StatusOf(err)
		}

		values := []string{req.Method, route, strconv.Itoa(status)}
		requests.WithLabelValues(values...).Inc()
		duration.WithLabelValues(values...).Observe(time.Since(start).Seconds())

		return resp, err
	}, nil
}
