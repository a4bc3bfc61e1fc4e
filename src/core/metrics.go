package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Proof metrics
	proofsAdmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aether_proofs_admitted_total",
		Help: "Total number of proofs admitted to the store",
	})

	proofStoreSizeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aether_proof_store_size",
		Help: "Current number of proofs in the store",
	})

	// Dispute metrics
	disputesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aether_disputes_total",
		Help: "Total number of dispute lifecycle events",
	}, []string{"outcome"})

	// Ledger metrics
	transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aether_transactions_total",
		Help: "Total number of transactions appended to the reward ledger",
	}, []string{"type"})

	tokensMovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aether_tokens_moved_total",
		Help: "Total token volume recorded on the reward ledger",
	}, []string{"type"})

	// Oracle metrics
	oracleRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aether_oracle_request_duration_seconds",
		Help:    "Duration of oracle (generative model) calls",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"operation", "status"})

	// Network telemetry
	networkTPSGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aether_network_tps",
		Help: "Simulated network transactions per second",
	})

	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aether_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aether_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// RecordProofAdmitted records a proof admission event.
func RecordProofAdmitted() {
	proofsAdmittedTotal.Inc()
}

// RecordDisputeEvent records a dispute lifecycle event. Outcome is one of
// "opened", "upheld", "overturned", "resolver_failed".
func RecordDisputeEvent(outcome string) {
	disputesTotal.WithLabelValues(outcome).Inc()
}

// RecordTransactionAppended records a ledger append with its token volume.
func RecordTransactionAppended(txType TransactionType, amount int) {
	transactionsTotal.WithLabelValues(string(txType)).Inc()
	tokensMovedTotal.WithLabelValues(string(txType)).Add(float64(amount))
}

// ObserveOracleCall records the duration and status of an oracle call.
func ObserveOracleCall(operation string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	oracleRequestDuration.WithLabelValues(operation, status).Observe(seconds)
}

// UpdateNetworkTPS updates the simulated throughput gauge.
func UpdateNetworkTPS(tps int) {
	networkTPSGauge.Set(float64(tps))
}
