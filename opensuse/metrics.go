package opensuse

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("github.com/quay/distroalias/opensuse")
	meter  = otel.Meter("github.com/quay/distroalias/opensuse")

	resolveCalls = must(meter.Int64Counter("resolve.calls",
		metric.WithDescription("The number of alias resolutions, by outcome."),
		metric.WithUnit("{call}"),
	))
)

var (
	includeEOLKey = attribute.Key("include_eol")
	successKey    = attribute.Key("success")
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "distroalias",
			Subsystem: "opensuse",
			Name:      "requests_total",
			Help:      "Total number of catalog requests, by document and outcome.",
		},
		[]string{"document", "outcome"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "distroalias",
			Subsystem: "opensuse",
			Name:      "request_duration_seconds",
			Help:      "The duration of catalog requests, including decoding.",
		},
		[]string{"document"},
	)
)

// Must is a panic-or-return helper for package initialization.
func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}
