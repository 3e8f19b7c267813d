package service

import "github.com/prometheus/client_golang/prometheus"

var (
	queryBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "physician_query_builds_total", Help: "Predicate builder outcomes"},
		[]string{"outcome"},
	)
	storeTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "physician_store_timeouts_total", Help: "Store calls aborted by deadline"},
		[]string{"op"},
	)
	writeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "physician_writes_total", Help: "Write service outcomes"},
		[]string{"op", "outcome"},
	)
)

func init() { prometheus.MustRegister(queryBuilds, storeTimeouts, writeOutcomes) }
