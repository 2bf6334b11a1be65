// Package metrics holds the coarse, global Prometheus counters the core
// records. Per-pool queue depth is explicitly out of scope (spec.md's
// Non-goals); only invocation-level totals are tracked, grounded on
// punchamoorthee-ledgerops's promauto usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BridgeProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burstqueue_bridge_processed_total",
		Help: "Intake messages committed and acknowledged by the Bridge worker.",
	})

	BridgeDLQTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burstqueue_bridge_dlq_total",
		Help: "Intake messages routed to the dead-letter queue by the Bridge worker.",
	})

	BridgeInvocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burstqueue_bridge_invocations_total",
		Help: "Bridge worker invocations started, including ones whose queue read failed.",
	})

	ReaperReapedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burstqueue_reaper_reaped_total",
		Help: "Slots returned to AVAILABLE by the Reaper's orphan sweep.",
	})

	ClaimSoldOutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "burstqueue_claim_sold_out_total",
		Help: "Claim requests that found no AVAILABLE slot in the pool.",
	})
)
