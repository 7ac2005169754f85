// Package services – Prometheus instrumentation for the ingestion and search
// paths. Label cardinality is bounded: the only labels are the small, closed
// sets of ingest statuses and search outcomes.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// ingestTotal counts document submissions by ingest status
	// (stored, duplicate, unsupported).
	ingestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docbot_documents_ingested_total",
			Help: "Total number of document submissions by ingest status.",
		},
		[]string{"status"},
	)

	// searchTotal counts searches by outcome (empty_query, no_matches, matches).
	searchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docbot_searches_total",
			Help: "Total number of searches by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(ingestTotal, searchTotal)
}
