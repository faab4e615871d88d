package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	partitionsVec = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_agent_partitions_total",
		Help: "counter for number of partitions run, segmented by outcome",
	}, []string{"outcome"})
	dispatchesVec = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_agent_dispatches_total",
		Help: "counter for number of dispatches run, segmented by outcome",
	}, []string{"outcome"})
	rowsTransferredCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "connector_agent_rows_transferred_total",
		Help: "counter for number of rows moved from sources into writers",
	})
	dispatchTimeHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "connector_agent_dispatch_time_seconds",
		Help:    "histogram measuring time to run a dispatch to completion in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
)
