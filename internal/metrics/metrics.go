// Package metrics exposes the single histogram required by §6:
// bragi_elasticsearch_request_duration_seconds, labeled by search_type.
// Registration with a prometheus.Registerer is left to the HTTP surface
// collaborator (cmd/server); this package only builds the histogram and a
// small helper to time a call, mirroring how the broader example pack's
// service layer (not the teacher, which carries no metrics library at all)
// wires a Prometheus histogram around its handlers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchType labels the histogram, matching §4.2's three stages.
type SearchType string

const (
	SearchTypePrefix   SearchType = "prefix"
	SearchTypeFuzzy    SearchType = "fuzzy"
	SearchTypeFeatures SearchType = "features"
)

// RequestDuration is the histogram named in §6: exponential buckets
// starting at 1ms with factor 1.5 for 25 buckets.
var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "bragi_elasticsearch_request_duration_seconds",
		Help:    "Duration of search backend calls made by the autocomplete orchestrator.",
		Buckets: prometheus.ExponentialBuckets(0.001, 1.5, 25),
	},
	[]string{"search_type"},
)

// MustRegister registers RequestDuration (and any future geocore metrics)
// with reg. Safe to call exactly once during process boot.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(RequestDuration)
}

// Time records the duration of fn against the histogram for st and returns
// fn's error, so call sites can write:
//
//	err := metrics.Time(metrics.SearchTypePrefix, func() error { ... })
func Time(st SearchType, fn func() error) error {
	start := time.Now()
	err := fn()
	RequestDuration.WithLabelValues(string(st)).Observe(time.Since(start).Seconds())
	return err
}
