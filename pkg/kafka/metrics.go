package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journalist",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events written to Kafka, by topic and outcome.",
	}, []string{"topic", "outcome"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "journalist",
		Subsystem: "events",
		Name:      "publish_duration_seconds",
		Help:      "Time spent writing one event to Kafka.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"topic"})
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)
